package main

import (
	"context"
	"log"
	"os"

	"github.com/avetrovs/vitrine/internal/buildinfo"
	"github.com/avetrovs/vitrine/internal/client/cli"
	"github.com/avetrovs/vitrine/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
