// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"taskhub/internal/models"
)

type Config struct {
	BaseURL  string `mapstructure:"base_url"`
	Frontend struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"frontend"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	JWT struct {
		AccessSecret  string        `mapstructure:"access_secret"`
		RefreshSecret string        `mapstructure:"refresh_secret"`
		AccessExpiry  time.Duration `mapstructure:"access_expiry"`
		RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
	} `mapstructure:"jwt"`
	Registration struct {
		// DefaultRole is the role given to new registrants that do not
		// ask for one. The legacy behavior of defaulting to the top
		// rank is kept as the shipped default; deployments that want
		// new users at the bottom set this to "intern".
		DefaultRole string `mapstructure:"default_role"`
	} `mapstructure:"registration"`
}

func Load() Config {
	viper.SetDefault("jwt.access_expiry", 15*time.Minute)
	viper.SetDefault("jwt.refresh_expiry", 7*24*time.Hour)
	viper.SetDefault("registration.default_role", string(models.RoleManager))
	viper.SetDefault("frontend.url", "http://localhost:5173")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// explicit bindings
	_ = viper.BindEnv("base_url", "BASE_URL")
	_ = viper.BindEnv("frontend.url", "FRONTEND_URL")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("jwt.access_secret", "JWT_ACCESS_SECRET")
	_ = viper.BindEnv("jwt.refresh_secret", "JWT_REFRESH_SECRET")
	_ = viper.BindEnv("registration.default_role", "REGISTRATION_DEFAULT_ROLE")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		panic("config error: " + err.Error())
	}
	if c.Database.URL == "" {
		panic("config error: database.url/DATABASE_URL required")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		panic("config error: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET required")
	}
	if !models.ValidRole(models.Role(c.Registration.DefaultRole)) {
		panic("config error: registration.default_role must be one of the declared roles")
	}
	return c
}
