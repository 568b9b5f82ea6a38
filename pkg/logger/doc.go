// Package logger builds *slog.Logger values from functional options and
// provides attribute helpers that keep key names consistent.
//
// New picks a text or JSON handler, attaches static attributes and wraps the
// handler so that attributes carried by the context of each call (a request
// id, for instance) are added to the record:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "modelcheck"),
//	    logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	log.InfoContext(ctx, "validation rejected",
//	    logger.Schema("Order"),
//	    logger.ErrorCount(2),
//	)
//
// Error and Errors return an empty Attr for nil errors, so they can be passed
// unconditionally. Discard returns a logger used as the default by
// components that accept an optional logger.
package logger
