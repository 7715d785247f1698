package core

// Logger is any leveled logger the services can report through.
// args may carry an error, a context map or a domain record; implementations
// decide what to do with each.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
