package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Graph struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"graph"`
	Cache struct {
		ReviewTTLSeconds int `yaml:"review_ttl_seconds"`
	} `yaml:"cache"`
	JWT struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"jwt"`
}

func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4000"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgx"
	}
	if cfg.Cache.ReviewTTLSeconds == 0 {
		cfg.Cache.ReviewTTLSeconds = 3600
	}
	return cfg
}
