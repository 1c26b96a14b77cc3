package core

// Logger is any leveled logger used across the app.
// Implementations may inspect variadic args for errors and actor identities
// in order to enrich reports (see services/logger).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies the authenticated caller on whose behalf a log entry is made.
type Actor struct {
	ID    string
	Name  string
	Email string
}
