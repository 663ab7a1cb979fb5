// Package log provides the logging abstraction shared by streamship components.
//
// Every pipeline stage receives a Logger at construction; nothing in
// streamship logs through a package-level global. A zerolog adapter and a
// no-op logger are provided.
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	quiet := log.NewNoopLogger()
//
// Custom loggers implement the four level methods:
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
