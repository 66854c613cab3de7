package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds client settings. Values come from the optional YAML file,
// overridden by LEILAO_* environment variables.
type Config struct {
	APIURL      string `yaml:"api_url"`
	SocketURL   string `yaml:"socket_url"`
	SessionFile string `yaml:"session_file"`
	LogLevel    string `yaml:"log_level"`
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		APIURL:      "http://localhost:3001",
		SocketURL:   "ws://localhost:3001/ws",
		SessionFile: filepath.Join(home, ".leilao", "session.json"),
		LogLevel:    "info",
	}
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.APIURL = getEnv("LEILAO_API_URL", config.APIURL)
	config.SocketURL = getEnv("LEILAO_SOCKET_URL", config.SocketURL)
	config.SessionFile = getEnv("LEILAO_SESSION_FILE", config.SessionFile)
	config.LogLevel = getEnv("LEILAO_LOG_LEVEL", config.LogLevel)

	return &config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
