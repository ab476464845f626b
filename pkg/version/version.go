package version

import "runtime"

// Version is the koho release
const Version = "0.4.0"

// BuildVersion returns the version string printed by koho version
func BuildVersion() string {
	return "koho version " + Version + " (" + runtime.Version() + ")"
}

// APIVersion returns just the version number for API responses
func APIVersion() string {
	return Version
}

// UserAgent identifies koho in outgoing HTTP requests.
func UserAgent() string {
	return "koho/" + Version
}
