package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fzp/models"
	"fzp/pkg/config"
)

var db *gorm.DB

func initDB(cfg *config.Config) {
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set. This service requires a Postgres DSN in DB_DSN.")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	if cfg.DBAutoMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.ProtocolRecord{}); err != nil {
			log.Printf("migration warning (protocol_records): %v", err)
		}
		if err := db.AutoMigrate(&models.PhotoUpload{}); err != nil {
			log.Printf("migration warning (photo_uploads): %v", err)
		}
	}
}
