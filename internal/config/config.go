package config

import (
	"os"
	"strings"
)

type APIConfig struct {
	Addr        string
	DatabaseURL string
	SQLitePath  string
	VariantPath string
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() APIConfig {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("IRONRAILS_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:        addr,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envDefault("IRONRAILS_SQLITE_PATH", "ironrails.db"),
		VariantPath: strings.TrimSpace(os.Getenv("IRONRAILS_VARIANT")),
	}
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("RAIL_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
