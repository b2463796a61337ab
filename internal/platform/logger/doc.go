// Package logger builds the JSON slog logger for the server and carries
// request-scoped loggers (with trace and user IDs) through context.Context.
package logger
