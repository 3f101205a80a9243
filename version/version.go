package version

// Set at build time with -ldflags "-X github.com/activewin/activewin/version.Version=... -X github.com/activewin/activewin/version.Commit=..."
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)
