package debug

import (
	"os"
	"strconv"
)

const (
	DebugShowSetupKey = "DEBUG_SHOW_SETUP"
	DebugLogKey       = "DEBUG_LOG"
)

func envFlag(key string) bool {
	enabled, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && enabled
}
