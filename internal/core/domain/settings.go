package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// LogFormat selects how log records are rendered.
type LogFormat string

// Supported log formats.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// TTYMode controls whether commands run attached to a pseudo-terminal.
// In auto mode only commands marked tty get one, and only when stdout is a terminal.
type TTYMode string

// Supported TTY modes.
const (
	TTYAuto   TTYMode = "auto"
	TTYAlways TTYMode = "always"
	TTYNever  TTYMode = "never"
)

// DefaultGracePeriod is how long an interrupted command may take to exit before it is killed.
const DefaultGracePeriod = 5 * time.Second

// Settings holds the runtime options of the runner.
type Settings struct {
	File        string        `mapstructure:"file"`
	LogFormat   LogFormat     `mapstructure:"log_format"`
	Shell       []string      `mapstructure:"shell"`
	TTY         TTYMode       `mapstructure:"tty"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LogFormat:   LogFormatPretty,
		Shell:       append([]string(nil), DefaultShell...),
		TTY:         TTYAuto,
		GracePeriod: DefaultGracePeriod,
	}
}

// Validate reports the first unsupported value.
func (s Settings) Validate() error {
	switch s.LogFormat {
	case LogFormatPretty, LogFormatJSON:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "unknown log format"), "log_format", string(s.LogFormat))
	}

	switch s.TTY {
	case TTYAuto, TTYAlways, TTYNever:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "unknown tty mode"), "tty", string(s.TTY))
	}

	if len(s.Shell) == 0 || s.Shell[0] == "" {
		return zerr.Wrap(ErrInvalidSetting, "shell must name a program")
	}

	if s.GracePeriod <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "grace period must be positive"), "grace_period", s.GracePeriod.String())
	}

	return nil
}
