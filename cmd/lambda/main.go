package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/config"
	"github.com/syngenta/acai-ts-sub001/internal/enrich"
	"github.com/syngenta/acai-ts-sub001/internal/pipeline"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

// Summary is the handler's return value: how many records arrived, how many
// survived filtering, and whether every kept record validated.
type Summary struct {
	Received int  `json:"received"`
	Kept     int  `json:"kept"`
	AllValid bool `json:"allValid"`
}

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if cfg.App.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	logger.Info("Lambda handler initialized",
		zap.String("schema_file", cfg.Schema.FilePath),
		zap.Bool("get_object", cfg.Pipeline.GetObject),
	)
}

func main() {
	lambda.Start(handler)
}

func handler(ctx context.Context, event map[string]interface{}) (Summary, error) {
	opts := pipeline.DefaultOptions()
	opts.ValidationError = cfg.Pipeline.ValidationError
	opts.OperationError = cfg.Pipeline.OperationError
	opts.StrictValidation = cfg.Schema.Strict
	opts.GetObject = cfg.Pipeline.GetObject
	opts.IsJSON = cfg.Pipeline.IsJSON
	opts.IsCSV = cfg.Pipeline.IsCSV
	opts.SchemaPath = cfg.Schema.FilePath
	if cfg.Schema.RequiredBody != "" {
		opts.RequiredBody = cfg.Schema.RequiredBody
	}
	opts.S3 = enrich.Config{
		Region:          cfg.Bucket.Region,
		Endpoint:        cfg.Bucket.Endpoint,
		AccessKeyID:     cfg.Bucket.AccessKeyID,
		SecretAccessKey: cfg.Bucket.SecretAccessKey,
		UsePathStyle:    cfg.Bucket.UsePathStyle,
	}

	p, err := pipeline.New(ctx, event, opts, logger)
	if err != nil {
		logger.Error("Failed to build pipeline", zap.Error(err))
		return Summary{}, err
	}

	results, err := p.Process(ctx)
	if err != nil {
		logger.Error("Failed to process event batch", zap.Error(err))
		return Summary{}, err
	}

	received := 0
	if rawRecords, ok := event["Records"].([]interface{}); ok {
		received = len(rawRecords)
	}
	for _, res := range results {
		logger.Info("processed record",
			zap.String("record_id", res.Record.ID()),
			zap.String("source", string(res.Record.Source())),
			zap.String("operation", string(res.Record.Operation())),
			zap.Bool("valid", res.Valid),
		)
	}

	return Summary{Received: received, Kept: len(results), AllValid: p.AllValid()}, nil
}
