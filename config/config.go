package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
}

type FoursquareConfig struct {
	APIKey            string        `mapstructure:"apiKey"`
	BaseURL           string        `mapstructure:"baseURL"`
	APIVersion        string        `mapstructure:"apiVersion"`
	UserAgent         string        `mapstructure:"userAgent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Burst             int           `mapstructure:"burst"`
	CacheTTL          time.Duration `mapstructure:"cacheTTL"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"apiKey"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type ChatConfig struct {
	ConversationTTL   time.Duration `mapstructure:"conversationTTL"`
	HistoryLimit      int           `mapstructure:"historyLimit"`
	RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
}

type PlannerConfig struct {
	SessionTTL    time.Duration `mapstructure:"sessionTTL"`
	DefaultOrigin struct {
		Lat float64 `mapstructure:"lat"`
		Lng float64 `mapstructure:"lng"`
	} `mapstructure:"defaultOrigin"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		ExternalAPI struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"externalAPI"`
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Foursquare FoursquareConfig `mapstructure:"foursquare"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Planner    PlannerConfig    `mapstructure:"planner"`
}

// secrets come from the environment so they never live in config.yml
var envBindings = map[string]string{
	"foursquare.apiKey":              "FOURSQUARE_API_KEY",
	"llm.apiKey":                     "GOOGLE_GEMINI_API_KEY",
	"jwt.secretKey":                  "JWT_SECRET",
	"repositories.postgres.host":     "POSTGRES_HOST",
	"repositories.postgres.port":     "POSTGRES_PORT",
	"repositories.postgres.username": "POSTGRES_USER",
	"repositories.postgres.password": "POSTGRES_PASSWORD",
	"repositories.postgres.db":       "POSTGRES_DB",
	"server.HTTPPort":                "PORT",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
