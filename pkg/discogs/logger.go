package discogs

// Logger is the debug tracing surface of the client. Errors are returned to
// callers and never logged here.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
