package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/okian/perfdash/internal/report"
	"github.com/okian/perfdash/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithLevel("warn")); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := report.NewRootCmd(os.Stdout, logger.Get().Named("report"))
	if err := root.ExecuteContext(ctx); err != nil {
		report.PrintError(os.Stderr, err, report.JSONRequested(os.Args[1:]))
		stop()
		os.Exit(1)
	}
}
