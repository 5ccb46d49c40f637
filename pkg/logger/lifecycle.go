/* pkg/logger/lifecycle.go */

package logger

import (
	"github.com/google/uuid"
)

// GenerateTraceID returns a short 8-char trace ID for correlating the log
// lines of one command when no telemetry span carries a real trace ID.
func GenerateTraceID() string {
	return uuid.New().String()[:8]
}
