package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Setup reads config.json from the working directory and binds the
// environment overrides. Every key has a default so a missing file is fine,
// a broken one is not.
func Setup() error {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.SetDefault("api.address", "0.0.0.0:8060")
	viper.SetDefault("log.path", "./combined.log")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("injest.schedule", "@hourly")
	viper.SetDefault("injest.timeout", "10s")
	viper.SetDefault("spaces.endpoint", "ams3.digitaloceanspaces.com")
	viper.SetDefault("spaces.bucket", "fancast")
	viper.SetDefault("spaces.ssl", true)

	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.database", "DB_NAME")
	viper.BindEnv("database.password", "DB_PASS")
	viper.BindEnv("spaces.key", "SPACES_KEY")
	viper.BindEnv("spaces.secret", "SPACES_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading config file: %v", err)
	}
	return nil
}
