package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Storage    `yaml:"storage"`
	Redis      `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Booking    `yaml:"booking"`
	Cache      `yaml:"cache"`
	Auth       `yaml:"auth"`
	RateLimit  `yaml:"rate_limit"`
	SMTP       `yaml:"smtp"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
	Addr    string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Booking struct {
	Timezone         string        `yaml:"timezone" env:"BOOKING_TIMEZONE" env-default:"UTC"`
	LockTTL          time.Duration `yaml:"lock_ttl" env-default:"10s"`
	LockWait         time.Duration `yaml:"lock_wait" env-default:"2s"`
	FreeWindowMonths int           `yaml:"free_checkup_window_months" env-default:"12"`
}

type Cache struct {
	CategoryTTL     time.Duration `yaml:"category_ttl" env-default:"5m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env-default:"10m"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

type SMTP struct {
	Enabled  bool   `yaml:"enabled" env:"SMTP_ENABLED" env-default:"false"`
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}

// fetchConfigPath reads the -config flag, falling back to CONFIG_PATH.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
