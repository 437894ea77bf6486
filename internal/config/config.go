package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug   bool    `yaml:"debug" env:"DEBUG"`
	API     API     `yaml:"api"`
	Session Session `yaml:"session"`
}

type API struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:3030"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
}

type Session struct {
	// Path of the durable session record, the browser-storage analogue.
	Path string `yaml:"path" env:"SESSION_PATH" env-default:".boscov/session.json"`
}

func MustLoad(configPath string) *Config {
	_ = godotenv.Load()
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic(fmt.Errorf("config file %s not found", configPath))
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}
