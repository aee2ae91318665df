package config

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Import struct {
	Dev bool `envconfig:"DEV" default:"true"`
	DB  DB
	AI  AI
	AWS AWS
}

func NewImport(ctx context.Context) (Import, error) {
	var res Import
	if err := envconfig.Process("IMPORT", &res); err != nil {
		return Import{}, fmt.Errorf("parse import environment: %w", err)
	}

	if !res.Dev {
		params, err := FetchAWSParams(ctx, res.AWS.Region, []string{dbPathParam}, []string{aiAPIKeyParam})
		if err != nil {
			return Import{}, fmt.Errorf("get parameters: %w", err)
		}
		if key, ok := params[aiAPIKeyParam]; ok {
			res.AI.APIKey = key
		}
		res.DB.Path = params[dbPathParam]
	}

	return res, nil
}
