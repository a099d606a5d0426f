package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		Environment        string   `mapstructure:"environment"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	// Archive is the S3-compatible bucket production slips are uploaded to.
	// Archiving is off while Bucket is empty.
	Archive struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`

	App struct {
		CompanyName   string `mapstructure:"company_name"`
		Timezone      string `mapstructure:"timezone"`
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
		AdminOrgID    int    `mapstructure:"admin_org_id"`
	} `mapstructure:"app"`
}

// Load reads configs/config.yaml when present, then .env and the environment
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-View-As-Organisation"})
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "timber-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "timber_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("app.company_name", "Timber Mill")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.admin_org_id", 1)
	v.SetDefault("app.admin_email", "")
	v.SetDefault("app.admin_password", "")
	v.SetDefault("jwt.secret", "")

	if err := v.ReadInConfig(); err != nil {
		zap.L().Info("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if endpoint := os.Getenv("ARCHIVE_ENDPOINT"); endpoint != "" {
		cfg.Archive.Endpoint = endpoint
	}
	if bucket := os.Getenv("ARCHIVE_BUCKET"); bucket != "" {
		cfg.Archive.Bucket = bucket
	}
	if key := os.Getenv("ARCHIVE_ACCESS_KEY"); key != "" {
		cfg.Archive.AccessKey = key
	}
	if secret := os.Getenv("ARCHIVE_SECRET_KEY"); secret != "" {
		cfg.Archive.SecretKey = secret
	}

	return &cfg, nil
}

// DatabaseURL builds the pgx connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name, c.Database.SSLMode)
}

// ArchiveEnabled reports whether production slips should be uploaded
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
