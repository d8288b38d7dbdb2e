package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hr-lms/backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.NewRootCommand(cli.OpenRuntime).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
