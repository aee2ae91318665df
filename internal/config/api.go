package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type (
	CORS struct {
		AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:5173"`
	}

	JWT struct {
		Issuer   string   `envconfig:"ISSUER" default:"love-dialect-api"`
		Audience []string `envconfig:"AUDIENCE" default:"http://localhost:8080"`
		Secret   string   `envconfig:"SECRET" default:""`
	}

	Cookie struct {
		Path            string        `envconfig:"CPATH" default:"/"` // not using PATH here because it may conflict with os.Path
		Domain          string        `envconfig:"DOMAIN" default:"localhost"`
		AccessExpiresIn time.Duration `envconfig:"ACCESS_EXPIRES_IN" default:"720h"`
	}

	HTTP struct {
		ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"10s"`
		RateLimit      float64       `envconfig:"RATE_LIMIT" default:"25"`
		AIRateLimit    float64       `envconfig:"AI_RATE_LIMIT" default:"1"`
		CORS           CORS
		Cookie         Cookie
		JWT            JWT
	}

	Server struct {
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
		ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
		SweepInterval     time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
		Addr              string        `envconfig:"ADDR" default:":8080"`
	}

	API struct {
		Dev    bool `envconfig:"DEV" default:"false"`
		DB     DB
		HTTP   HTTP
		AI     AI
		AWS    AWS
		Server Server
	}
)

func NewAPI(ctx context.Context) (API, error) {
	var res API
	if err := envconfig.Process("API", &res); err != nil {
		return API{}, fmt.Errorf("parse api environment: %w", err)
	}

	if !res.Dev {
		if err := setAPIProdConfig(ctx, &res); err != nil {
			return API{}, fmt.Errorf("set api prod config: %w", err)
		}
	}

	if err := validateAPI(res); err != nil {
		return API{}, err
	}
	return res, nil
}

func validateAPI(conf API) error {
	errs := make([]string, 0, 6) //nolint:mnd // one slot per checked field
	if conf.HTTP.JWT.Secret == "" {
		errs = append(errs, "jwt secret is required")
	}
	if len(conf.HTTP.JWT.Audience) == 0 {
		errs = append(errs, "jwt audience is required")
	}
	if conf.HTTP.RateLimit <= 0 {
		errs = append(errs, "rate limit must be positive")
	}
	if conf.HTTP.AIRateLimit <= 0 {
		errs = append(errs, "ai rate limit must be positive")
	}
	if conf.Server.SweepInterval <= 0 {
		errs = append(errs, "sweep interval must be positive")
	}
	if conf.AI.MaxChatLength <= 0 {
		errs = append(errs, "max chat length must be positive")
	}
	return joinErrors(errs)
}

func setAPIProdConfig(ctx context.Context, target *API) error {
	params, err := FetchAWSParams(ctx, target.AWS.Region, []string{jwtSecretParam, dbPathParam}, []string{aiAPIKeyParam})
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	target.HTTP.JWT.Secret = params[jwtSecretParam]
	// an absent key leaves AI disabled, the rest of the API still starts
	if key, ok := params[aiAPIKeyParam]; ok {
		target.AI.APIKey = key
	}
	target.DB.Path = params[dbPathParam]
	return nil
}
