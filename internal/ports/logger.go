package ports

import "context"

// Logger is handed to every component at construction. Each call takes at
// most a few field maps; later maps override earlier keys.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error records err next to msg; err may be nil.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
