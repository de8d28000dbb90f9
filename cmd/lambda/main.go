// Command lambda serves draw.io conversion behind an API Gateway proxy
// integration.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/pipeline"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Formatter: log.JSONFormatter,
		Level:     log.InfoLevel,
	})

	cfg, err := config.Load(os.Getenv("LZDRAW_CONFIG"))
	if err != nil {
		logger.Fatal("load config", "err", err)
	}

	h := &handler{
		runner: pipeline.NewRunner(nil, nil, nil, logger),
		theme:  cfg.Render.Theme,
		layout: cfg.Layout,
		logger: logger,
	}
	lambda.Start(h.handle)
}
