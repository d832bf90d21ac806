package main

import (
	"context"
	"log"

	"github.com/sayedsafi2000/pixelsbee/internal/server"
	"github.com/sayedsafi2000/pixelsbee/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
