package internal

import "fmt"

var (
	Version = ""
	Commit  = ""
)

func PrintableVersion() string {
	return fmt.Sprintf("kokoro-tts %s (commit: %s)", displayVersion(), displayCommit())
}

func displayVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

func displayCommit() string {
	if Commit == "" {
		return "unknown"
	}
	return Commit
}
