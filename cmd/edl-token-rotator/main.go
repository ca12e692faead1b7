package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"

	"github.com/earthdata-tools/edl-token-rotator/internal/config"
	"github.com/earthdata-tools/edl-token-rotator/internal/creds"
	"github.com/earthdata-tools/edl-token-rotator/internal/edl"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
	"github.com/earthdata-tools/edl-token-rotator/internal/rotator"
	"github.com/earthdata-tools/edl-token-rotator/internal/store"
)

const defaultConfigPath = "edl-rotator.yaml"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Under Lambda the scheduler supplies the event; the CLI surface is for
	// local and ad hoc runs.
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		runLambda()
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		prefix     string
		debug      bool
		noColor    bool
	)

	rootCmd := &cobra.Command{
		Use:   "edl-token-rotator",
		Short: "Rotate the Earthdata Login bearer token in SSM Parameter Store",
		Long: `edl-token-rotator mints a fresh Earthdata Login (EDL) bearer token and
stores it as a SecureString parameter for downstream consumers.

EDL tokens expire after 60 days; this tool is meant to run on a fixed
schedule (every 59 days) regardless of the current token's validity. When
EDL reports that the per-account token limit has been reached, all existing
tokens are revoked and the request is retried once.

Examples:
  # Rotate using the key alias for the 'uds' deployment
  edl-token-rotator --prefix uds

  # Use a config file to point at LocalStack
  edl-token-rotator --prefix uds --config edl-rotator.yaml`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				return fmt.Errorf("--prefix is required (it selects the '{prefix}-ssm-parameter-store' key alias)")
			}

			logger := logging.New(debug, noColor)
			cfg, err := config.Load(configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}

			ctx := context.Background()
			r, err := buildRotator(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return r.Run(ctx, prefix)
		},
	}

	rootCmd.Flags().StringVar(&configFile, "config", defaultConfigPath, "Config file path")
	rootCmd.Flags().StringVar(&prefix, "prefix", "", "Deployment prefix used to derive the encryption key alias")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return rootCmd.Execute()
}

func runLambda() {
	logger := logging.New(os.Getenv("EDL_ROTATOR_DEBUG") != "", true)

	configPath := os.Getenv("EDL_ROTATOR_CONFIG")
	required := configPath != ""
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath, required)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	r, err := buildRotator(ctx, cfg, logger)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	lambda.Start((&rotator.Handler{Rotator: r}).Handle)
}

// buildRotator constructs the AWS clients and wires the run pipeline.
func buildRotator(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*rotator.Rotator, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	source, err := creds.New(cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}

	client := edl.NewClient(cfg.EDL.BaseURL, cfg.HTTPTimeout(), logger)
	st := store.New(kms.NewFromConfig(awsCfg), ssm.NewFromConfig(awsCfg), logger)

	return rotator.New(source, client, st, logger), nil
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	// Static credentials are only used with a custom endpoint (LocalStack).
	if cfg.AWS.AccessKeyID != "" && cfg.AWS.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.AWS.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
	}
	return awsCfg, nil
}
