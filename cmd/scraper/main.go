package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"product-scraper/cmd/scraper/commands"
	logx "product-scraper/pkg/logger"
)

func main() {
	logx.Init(logx.LoggerOpts{Environment: logx.Environment(os.Getenv("APP_ENV"))})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
