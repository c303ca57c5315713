package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blacktop/xsync/cmd"
	"github.com/blacktop/xsync/internal/logutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
