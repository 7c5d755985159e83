package main

import (
	"log"
	"time"

	"wms-alloc/internal/config"
	"wms-alloc/internal/cronjob"
	"wms-alloc/internal/db"
	"wms-alloc/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Could not load config: %s\n", err)
	}

	sqlxDB, err := db.ConnectSqlx(`wms_alloc`)
	if err != nil {
		log.Fatalf("Could not connect database: %s\n", err)
	}
	if err := db.Bootstrap(sqlxDB); err != nil {
		log.Fatalf("Could not bootstrap schema: %s\n", err)
	}
	sqlxDB.Close()

	router := gin.Default()
	routes.RegisterRoutes(router, cfg)

	cronjob.Start()
	defer cronjob.Stop()

	log.Printf("Starting server on port: %s ,as time: %s\n", cfg.HTTPPort, time.Now())
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}
