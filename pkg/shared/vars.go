// pkg/shared/vars.go

package shared

import "go.uber.org/zap"

// Version is overridden at build time with -ldflags "-X .../pkg/shared.Version=...".
var Version = "dev"

// SafeSync flushes the global logger, ignoring the EINVAL that stdout/stderr
// return on some platforms.
func SafeSync() {
	_ = zap.L().Sync()
}
