package config

import "time"

type appConfig struct {
	ServerAddress   string `env:"SERVER_ADDRESS"`
	BaseURL         string `env:"BASE_URL"`
	FileStoragePath string `env:"FILE_STORAGE_PATH"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
	BlacklistPath   string `env:"BLACKLIST_PATH"`
	JWTSecret       string `env:"JWT_SECRET"`
}

var defaults = appConfig{
	ServerAddress:   "localhost:8080",
	BaseURL:         "http://localhost:8080",
	FileStoragePath: "short-links.json",
	JWTSecret:       "55c21cba3f534ae292ab2cc6921e6bc7",
}

var Current = appConfig{}

// TokenExp bounds the auth cookie lifetime.
const TokenExp = 3 * time.Hour

func SetDefaults() {
	if Current.ServerAddress == "" {
		Current.ServerAddress = defaults.ServerAddress
	}
	if Current.BaseURL == "" {
		Current.BaseURL = defaults.BaseURL
	}
	if Current.FileStoragePath == "" {
		Current.FileStoragePath = defaults.FileStoragePath
	}
	if Current.JWTSecret == "" {
		Current.JWTSecret = defaults.JWTSecret
	}
}
