// Package logger builds *slog.Logger instances for kestrel services and
// provides attribute helpers shared by the router and the wrappers.
//
//	log := logger.New(logger.WithEnvironment("production", "api"))
//	log.Info("listening", logger.Component("app"), slog.String("addr", addr))
//
// Request-scoped values such as request IDs are added to every record by
// context extractors registered with WithContextExtractors.
package logger
