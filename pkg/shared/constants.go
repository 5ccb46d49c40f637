// pkg/shared/constants.go

package shared

import "os"

const (
	// ClioID names the binary, the XDG state directory and the env prefix.
	ClioID = "clio"

	// EnvPrefix is prepended to every environment override, e.g. CLIO_LOGS_ROOT.
	EnvPrefix = "CLIO"

	ClioLogDir = "/var/log/clio/"
	// #nosec G101 - This is a log file path, not a hardcoded credential
	ClioLogs    = ClioLogDir + "clio.log"
	ClioLogsPWD = "./clio.log"

	// Entity log roots used when neither config nor environment set one.
	DefaultLogsRoot     = "/var/lib/clio/logs"
	DefaultTempLogsRoot = "/tmp/clio/logs"

	ConfigFileName = "clio"
	ConfigFileType = "yaml"
	DotEnvFile     = ".env"
)

const (
	// LogDirPerm is applied to directories created for entity logs.
	// Shared filesystems are written by several service accounts.
	LogDirPerm os.FileMode = 0755

	// LogFilePerm is applied when an append creates a new entity log.
	LogFilePerm os.FileMode = 0644

	// Lifecycle log of the CLI itself stays owner-only.
	InternalLogDirPerm  os.FileMode = 0700
	InternalLogFilePerm os.FileMode = 0600
)
