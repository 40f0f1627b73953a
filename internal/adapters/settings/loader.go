// Package settings resolves runtime settings from RBUILD_* environment variables and an
// optional user configuration file.
package settings

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix is the prefix of environment variables read by the loader.
const EnvPrefix = "RBUILD"

// Loader reads domain.Settings.
type Loader struct {
	configFile string
}

// NewLoader creates a Loader reading the user configuration file at its default location.
func NewLoader() *Loader {
	return &Loader{
		configFile: DefaultConfigFile(),
	}
}

// NewLoaderWithFile creates a Loader reading the given configuration file.
// An empty path disables the file.
func NewLoaderWithFile(path string) *Loader {
	return &Loader{
		configFile: path,
	}
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/rbuild/config.yaml, or an empty string
// when no configuration directory is known.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rbuild", "config.yaml")
}

// Load resolves the settings. Environment variables take precedence over the file.
func (l *Loader) Load() (domain.Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	defaults := domain.DefaultSettings()
	v.SetDefault("file", defaults.File)
	v.SetDefault("log_format", string(defaults.LogFormat))
	v.SetDefault("shell", strings.Join(defaults.Shell, " "))
	v.SetDefault("tty", string(defaults.TTY))
	v.SetDefault("grace_period", defaults.GracePeriod.String())

	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err == nil {
			v.SetConfigFile(l.configFile)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", l.configFile)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error()), "path", l.configFile)
		}
	}

	var s domain.Settings
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToFieldsHookFunc(),
	)
	if err := v.Unmarshal(&s, viper.DecodeHook(hook)); err != nil {
		return domain.Settings{}, zerr.Wrap(err, domain.ErrSettingsLoadFailed.Error())
	}

	s.LogFormat = domain.LogFormat(strings.ToLower(string(s.LogFormat)))
	s.TTY = domain.TTYMode(strings.ToLower(string(s.TTY)))

	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// stringToFieldsHookFunc splits a string into a []string on whitespace, so that
// RBUILD_SHELL="bash -eu -c" yields a program and its arguments.
func stringToFieldsHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf([]string{}) {
			return data, nil
		}
		return strings.Fields(data.(string)), nil
	}
}
