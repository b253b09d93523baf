package debug

import "log/slog"

// Enabled gates every debug switch below; release builds can flip it off.
const Enabled = true

func IsDebugShowSetup() bool {
	return Enabled && envFlag(DebugShowSetupKey)
}

func IsDebugLog() bool {
	return Enabled && envFlag(DebugLogKey)
}

// LogLevel is the slog level the CLI should log at.
func LogLevel() slog.Level {
	if IsDebugLog() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
