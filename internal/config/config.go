package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PETHUB"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Blob      BlobConfig      `mapstructure:"blob"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig: si JWTSecret está vacío se usa modo dev (X-Debug-User-ID).
// AdminUserIDs habilita las rutas /admin y la moderación de refugios.
type AuthConfig struct {
	JWTSecret    string   `mapstructure:"jwt_secret"`
	Issuer       string   `mapstructure:"issuer"`
	AdminUserIDs []string `mapstructure:"admin_user_ids"`
}

// DatabaseConfig: DSN vacío => repos in-memory.
type DatabaseConfig struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type NATSConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// BlobConfig apagado por defecto: las imágenes pueden ser URLs externas.
type BlobConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RetentionConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Interval           time.Duration `mapstructure:"interval"`
	RejectedMaxAgeDays int           `mapstructure:"rejected_max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pet-adoption-hub")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.admin_user_ids", []string{})

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.connect_timeout", "5s")

	v.SetDefault("blob.enabled", false)
	v.SetDefault("blob.endpoint", "localhost:9000")
	v.SetDefault("blob.access_key", "minioadmin")
	v.SetDefault("blob.secret_key", "minioadmin")
	v.SetDefault("blob.bucket", "pet-images")
	v.SetDefault("blob.use_ssl", false)

	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.interval", "1h")
	v.SetDefault("retention.rejected_max_age_days", 30)
}

// Load lee defaults, luego config.yaml (si existe en path) y por último env PETHUB_*.
// Un .env en el cwd se carga antes, sin pisar variables ya definidas.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			if fi.IsDir() {
				v.AddConfigPath(path)
				v.SetConfigName("config")
				v.SetConfigType("yaml")
			} else {
				v.SetConfigFile(path)
			}
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, err
				}
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PORT (convención de PaaS) pisa http.port.
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		v.Set("http.port", p)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Retention.RejectedMaxAgeDays <= 0 {
		return nil, errors.New("retention.rejected_max_age_days must be > 0")
	}
	if cfg.Retention.Enabled && cfg.Retention.Interval <= 0 {
		return nil, errors.New("retention.interval must be > 0")
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.HTTP.Port), ":")
}
