package util

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the environment biff reads once per invocation.
type Config struct {
	Now       string
	Locale    string
	LogLevel  LogLevel
	LogFormat LogFormat
	TZ        string
}

var envBindings = map[string]string{
	"now":        "BIFF_NOW",
	"locale":     "BIFF_LOCALE",
	"log":        "BIFF_LOG",
	"log_format": "BIFF_LOG_FORMAT",
	"tz":         "TZ",
}

// LoadConfig reads the environment through viper.
func LoadConfig() (Config, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, errors.Wrapf(err, "binding %s", env)
		}
	}
	v.SetDefault("log_format", string(FormatText))

	level, err := ParseLogLevel(v.GetString("log"))
	if err != nil {
		return Config{}, errors.Wrap(err, "BIFF_LOG")
	}

	format := LogFormat(strings.ToLower(v.GetString("log_format")))
	if format != FormatText && format != FormatJSON {
		return Config{}, errors.Errorf("BIFF_LOG_FORMAT: unrecognized log format `%s`", format)
	}

	return Config{
		Now:       v.GetString("now"),
		Locale:    v.GetString("locale"),
		LogLevel:  level,
		LogFormat: format,
		TZ:        v.GetString("tz"),
	}, nil
}
