package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ikjunoob/Photomemo/internal/config"
	"github.com/ikjunoob/Photomemo/internal/database"
	"github.com/ikjunoob/Photomemo/internal/router"
	"github.com/ikjunoob/Photomemo/internal/storage"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// object storage client
	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db, store)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
