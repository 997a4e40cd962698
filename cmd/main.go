package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcreview/mcreview-backend/internal/app"
	"github.com/mcreview/mcreview-backend/internal/utils"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := utils.GetEnv("PORT", "8080", a.Log)
	if err := a.Serve(ctx, ":"+port); err != nil {
		a.Log.Error("Server failed", "error", err)
	}
}
