package main

import (
	"context"
	"log"

	"github.com/dev-c-webd/tube-v/internal/client/cli"
	"github.com/dev-c-webd/tube-v/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
