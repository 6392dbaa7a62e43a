package main

import (
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

type OpenAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type Config struct {
	APIBaseURL     string       `json:"api_base_url"`
	Origin         string       `json:"origin"`
	PublishableKey string       `json:"publishable_key"`
	Container      string       `json:"container"`
	Debug          bool         `json:"debug"`
	OpenAI         OpenAIConfig `json:"openai"`
}

// loadConfig reads the JSON file at path, if any, then applies BRIEFPAY_* overrides
// from the environment and a local .env file.
func loadConfig(path string) (*Config, error) {
	conf := Config{
		APIBaseURL: "http://localhost:8000",
		Origin:     "http://localhost:8000",
	}
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err = sonic.Unmarshal(file, &conf); err != nil {
				return nil, err
			}
		}
	}
	_ = godotenv.Load()
	overlayEnv(&conf)
	return &conf, nil
}

func overlayEnv(conf *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("BRIEFPAY_API_BASE_URL", &conf.APIBaseURL)
	setString("BRIEFPAY_ORIGIN", &conf.Origin)
	setString("BRIEFPAY_PUBLISHABLE_KEY", &conf.PublishableKey)
	setString("BRIEFPAY_CONTAINER", &conf.Container)
	setString("BRIEFPAY_OPENAI_API_KEY", &conf.OpenAI.APIKey)
	setString("BRIEFPAY_OPENAI_BASE_URL", &conf.OpenAI.BaseURL)
	setString("BRIEFPAY_OPENAI_MODEL", &conf.OpenAI.Model)
	if v, ok := os.LookupEnv("BRIEFPAY_DEBUG"); ok {
		if debug, err := strconv.ParseBool(v); err == nil {
			conf.Debug = debug
		}
	}
}
