// Package httpserver runs an http.Handler with configurable timeouts,
// lifecycle logging and graceful shutdown on context cancellation, SIGINT or
// SIGTERM.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Listen and serve failures are wrapped with ErrStart, drain failures with
// ErrShutdown. HealthHandler serves liveness and readiness probes.
package httpserver
