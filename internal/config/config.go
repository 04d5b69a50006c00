package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
	Login struct {
		// Rate is the number of login attempts allowed per minute.
		Rate  int
		Burst int
	}
	BcryptCost int
}

// Load reads config from environment (SHELF_ prefix) and optional shelf.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("shelf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("jwt.ttl", "2h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("login.rate", 10)
	v.SetDefault("login.burst", 5)
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Login.Rate = v.GetInt("login.rate")
	cfg.Login.Burst = v.GetInt("login.burst")
	cfg.BcryptCost = v.GetInt("bcrypt.cost")

	ttl, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHELF_JWT_TTL: %w", err)
	}
	cfg.JWT.TTL = ttl

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("SHELF_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("SHELF_DB_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("SHELF_JWT_SECRET is required")
	}
	if cfg.Login.Rate <= 0 || cfg.Login.Burst <= 0 {
		return nil, fmt.Errorf("SHELF_LOGIN_RATE and SHELF_LOGIN_BURST must be positive")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("SHELF_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}

// LoadDB reads only the database settings. Commands that never serve HTTP
// (migrate, grant-role) use it so they do not need a JWT secret.
func LoadDB() (driver, dsn string, err error) {
	v := viper.New()
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("shelf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	driver, dsn = v.GetString("db.driver"), v.GetString("db.dsn")
	if driver == "" {
		return "", "", fmt.Errorf("SHELF_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if dsn == "" {
		return "", "", fmt.Errorf("SHELF_DB_DSN is required")
	}
	return driver, dsn, nil
}
