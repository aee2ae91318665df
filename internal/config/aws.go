package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type ParametersGetter interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// FetchAWSParams reads required and optional SSM parameters in one call.
// Only a missing required name is an error.
func FetchAWSParams(ctx context.Context, region string, required, optional []string) (map[string]string, error) {
	if region == "" {
		region = DefaultAWSRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return fetchParams(ctx, ssm.NewFromConfig(cfg), required, optional)
}

func fetchParams(ctx context.Context, client ParametersGetter, required, optional []string) (map[string]string, error) {
	parameters, err := client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          append(slices.Clone(required), optional...),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameters: %w", err)
	}

	params := make(map[string]string, len(parameters.Parameters))
	for _, param := range parameters.Parameters {
		params[aws.ToString(param.Name)] = aws.ToString(param.Value)
	}

	missingKeys := make([]string, 0)
	for _, key := range required {
		if _, exists := params[key]; !exists {
			missingKeys = append(missingKeys, key)
		}
	}
	if len(missingKeys) > 0 {
		return params, fmt.Errorf("missing parameter values: %v", missingKeys)
	}

	return params, nil
}
