package app

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"

	"mobsf-sidecar/handler"
	"mobsf-sidecar/internal/config"
	"mobsf-sidecar/internal/integrations/mobsf"
	"mobsf-sidecar/internal/integrations/openai"
	"mobsf-sidecar/internal/integrations/paramstore"
	"mobsf-sidecar/internal/metrics"
	"mobsf-sidecar/internal/usecase"
)

// LoadSecrets resolves API keys from SSM Parameter Store when the config
// names a parameter prefix. It is a no-op otherwise.
func LoadSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.ParamPrefix == "" {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("app: load AWS config: %w", err)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return fmt.Errorf("app: create SSM client: %w", err)
	}
	return cfg.ResolveSecrets(ctx, ssmClient)
}

// NewHandler wires the report fetcher, chat client and relay into a handler.
func NewHandler(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*handler.Handler, error) {
	reports, err := mobsf.NewClient(cfg.MobSFURL, cfg.MobSFAPIKey, mobsf.WithTimeout(cfg.MobSFTimeout))
	if err != nil {
		return nil, fmt.Errorf("app: create MobSF client: %w", err)
	}

	chatOpts := []openai.Option{openai.WithTimeout(cfg.OpenAITimeout)}
	if cfg.OpenAIBaseURL != "" {
		chatOpts = append(chatOpts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	llm, err := openai.NewClient(cfg.OpenAIAPIKey, chatOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: create OpenAI client: %w", err)
	}

	relay, err := usecase.NewRelayService(reports, llm, cfg.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}

	return handler.NewHandler(relay,
		handler.WithLogger(logger),
		handler.WithMetrics(metrics.NewRelayMetrics(reg)),
	)
}
