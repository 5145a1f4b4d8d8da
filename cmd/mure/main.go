package main

import (
	"context"
	"log"
	"os"

	"github.com/kitsuyui/mure/internal/cli"
	"github.com/kitsuyui/mure/internal/logging"
)

func main() {
	ctx := context.Background()

	logger, err := logging.New(os.Getenv("MURE_LOG_LEVEL"), os.Getenv("MURE_LOG_FORMAT"))
	if err != nil {
		log.Printf("failed to set up logging: %v", err)
		os.Exit(1)
	}

	if err := cli.NewRoot(logger).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
