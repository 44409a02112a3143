// Package config wires viper for panmap: environment variables with the
// PANMAP_ prefix, an optional YAML config file and defaults.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/agentstation/panmap/pkg/errors"
)

// EnvPrefix is prepended to every environment variable panmap reads.
const EnvPrefix = "PANMAP"

// New returns a viper instance reading PANMAP_* environment variables.
// Nested keys map to underscores: "s3.bucket" reads PANMAP_S3_BUCKET.
func New(defaults map[string]any) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// ReadFile reads the config file at path, or when path is empty searches
// the home and working directories for "<name>.yaml". A missing search
// result is not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, path, name string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("config", "cannot read "+path, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(name)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.NewConfigError("config", "cannot parse config file", err)
	}
	return nil
}

// GetString returns key from v, falling back to the raw environment
// variable of the same name for keys set outside the PANMAP_ namespace.
func GetString(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return os.Getenv(strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key)))
}
