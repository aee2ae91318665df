package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAWSRegion = "eu-central-1"

	jwtSecretParam = "/love-dialect/prod/jwt-secret"
	aiAPIKeyParam  = "/love-dialect/prod/ai-api-key"
	dbPathParam    = "/love-dialect/prod/db-path"
)

type (
	DB struct {
		// Path to the SQLite file. Empty keeps everything in memory.
		Path string `envconfig:"FILE" default:""` // not using PATH here because it may conflict with os.Path
	}

	AI struct {
		APIKey        string        `envconfig:"API_KEY" default:""`
		BaseURL       string        `envconfig:"BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
		Model         string        `envconfig:"MODEL" default:"gemini-2.5-flash"`
		Timeout       time.Duration `envconfig:"TIMEOUT" default:"2m"`
		MaxRetries    uint64        `envconfig:"MAX_RETRIES" default:"2"`
		MaxChatLength int           `envconfig:"MAX_CHAT_LENGTH" default:"30000"`
	}

	AWS struct {
		Region string `envconfig:"REGION" default:"eu-central-1"`
	}
)

func (a AI) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(errs, ", "))
}
