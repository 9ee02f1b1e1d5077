// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	migrateOnly    = pflag.Bool("migrate-only", false, "Runs database migrations and exits")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// MigrateOnly reports whether the process was started just to run migrations.
func MigrateOnly() bool {
	return *migrateOnly
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.landing_path", "app_landing_path")
	v.BindEnv("app.login_path", "app_login_path")
	v.BindEnv("app.register_path", "app_register_path")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.access_ttl_minutes", "jwt_access_ttl_minutes")
	v.BindEnv("jwt.refresh_ttl_days", "jwt_refresh_ttl_days")

	v.BindEnv("links.slug_length", "links_slug_length")

	v.BindEnv("mail.enabled", "mail_enabled")
	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	v.BindEnv("oauth.google.enabled", "oauth_google_enabled")
	v.BindEnv("oauth.google.client_id", "oauth_google_client_id")
	v.BindEnv("oauth.google.client_secret", "oauth_google_client_secret")
	v.BindEnv("oauth.google.redirect_url", "oauth_google_redirect_url")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.landing_path", "/dashboard")
	v.SetDefault("app.login_path", "/login")
	v.SetDefault("app.register_path", "/register")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.access_ttl_minutes", 15)
	v.SetDefault("jwt.refresh_ttl_days", 7)

	v.SetDefault("links.slug_length", 7)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("oauth.google.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database DSN can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("jwt.access_ttl_minutes") <= 0 {
		return errors.New("jwt.access_ttl_minutes must be bigger than 0")
	}

	if v.GetInt("jwt.refresh_ttl_days") <= 0 {
		return errors.New("jwt.refresh_ttl_days must be bigger than 0")
	}

	if v.GetInt("links.slug_length") < 4 {
		return errors.New("links.slug_length must be at least 4")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail host can't be empty")
		}
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid mail port provided")
		}
		if v.GetString("mail.sender_address") == "" {
			return errors.New("mail sender address can't be empty")
		}
	} else {
		fmt.Println("[WARNING]: Mail delivery is disabled. Verification links will only be logged")
	}

	if v.GetBool("oauth.google.enabled") {
		if v.GetString("oauth.google.client_id") == "" {
			return errors.New("google client id can't be empty")
		}
		if v.GetString("oauth.google.client_secret") == "" {
			return errors.New("google client secret can't be empty")
		}
		if v.GetString("oauth.google.redirect_url") == "" {
			return errors.New("google redirect url can't be empty")
		}
	}

	return nil
}
