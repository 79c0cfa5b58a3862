package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	APIURL     string        `koanf:"pos_api_url"`
	Token      string        `koanf:"pos_token"`
	Email      string        `koanf:"pos_email"`
	Timeout    time.Duration `koanf:"timeout"`
	SettingsDB string        `koanf:"settings_db"`
	Locale     string        `koanf:"locale"`
	ReportsDir string        `koanf:"reports_dir"`
	StatsTTL   time.Duration `koanf:"stats_ttl"`
	LLMBaseURL string        `koanf:"llm_base_url"`
	LLMAPIKey  string        `koanf:"llm_api_key"`
	LLMModel   string        `koanf:"llm_model"`
	LogFile    string        `koanf:"log_file"`
	Debug      bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		APIURL:     "http://localhost:3000",
		Timeout:    20 * time.Second,
		SettingsDB: "./caixa.db",
		Locale:     "pt-BR",
		ReportsDir: ".",
		StatsTTL:   5 * time.Minute,
		LogFile:    "./caixa.log",
		Debug:      false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return Config{}, fmt.Errorf("pos_api_url is required")
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 5 * time.Minute
	}

	return cfg, nil
}
