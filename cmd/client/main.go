package main

import (
	"context"
	"log"
	"os"

	"chatterm/internal/buildinfo"
	"chatterm/internal/client/cli"
	"chatterm/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
