// Command duvidha is the command line client of the complaint desk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"duvidha/internal/client/cli"
	"duvidha/internal/configs"
	"duvidha/internal/pkg/logx"
)

func main() {
	cfg := configs.LoadClientConfig()
	// Logs go to stderr so they never mix with command output.
	*logx.Logger() = logx.New(cfg.Environment == "development", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	err = cli.NewRootCommand(app).ExecuteContext(ctx)
	_ = app.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
