package bookchat

// DefaultBaseURL is the backend address used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8000"

// BaseURLEnv names the environment variable consulted in server runtimes.
const BaseURLEnv = "BACKEND_URL"

// Runtime describes where the client is executing.
type Runtime int

// Runtime constants.
const (
	// RuntimeBrowser is an interactive, user-facing client. It always talks
	// to DefaultBaseURL.
	RuntimeBrowser Runtime = iota

	// RuntimeServer is a non-interactive context with access to the process
	// environment.
	RuntimeServer
)

// String returns the runtime name.
func (r Runtime) String() string {
	switch r {
	case RuntimeBrowser:
		return "browser"
	case RuntimeServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIBaseURL resolves the backend base URL for the given runtime.
// getenv is usually os.Getenv; a nil getenv behaves as an empty environment.
func APIBaseURL(rt Runtime, getenv func(string) string) string {
	if rt == RuntimeBrowser {
		return DefaultBaseURL
	}
	if getenv != nil {
		if v := getenv(BaseURLEnv); v != "" {
			return v
		}
	}
	return DefaultBaseURL
}
