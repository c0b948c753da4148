// Package logging builds the process-wide structured logger.
//
// The logger is a plain *slog.Logger with JSON, text or console output and a
// configurable minimum level. Records logged through the *Context methods
// carry the request ID placed in the context by WithRequestID:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "request handled") // includes request_id=req-123
package logging
