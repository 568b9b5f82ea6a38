// Package server exposes a schema.Registry over HTTP with a chi router.
//
// Validation requests post a JSON (or YAML) object to
// /schemas/{name}/validate. A valid record answers 200 with the model under
// "data"; a rejected one answers 422 with the report records under
// "error.details":
//
//	{"code":"validation_error","error":{"code":"validation_error",
//	 "message":"input failed validation",
//	 "details":[{"path":["price"],"kind":"constraint_violation","constraint":"range","message":"..."}]}}
//
// With WithMetrics the router also serves Prometheus metrics on /metrics.
package server
