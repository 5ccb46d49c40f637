/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
)

// PlatformLogPaths returns candidate paths for clio's own log, in order of priority.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			xdgStatePath("clio.log"),
			shared.ClioLogsPWD,
			"/tmp/clio/clio.log",
		}
	case "linux":
		return []string{
			shared.ClioLogs,         // best if writable (service account)
			xdgStatePath("clio.log"), // ~/.local/state/clio/clio.log
			shared.ClioLogsPWD,
			"/tmp/clio/clio.log",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramData"), shared.ClioID, "clio.log"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), shared.ClioID, "clio.log"),
			".\\clio.log",
		}
	default:
		return []string{shared.ClioLogsPWD}
	}
}

func xdgStatePath(name string) string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), shared.ClioID, name)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, shared.ClioID, name)
}
