package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fzp/pkg/config"
	"fzp/pkg/drive"
	"fzp/pkg/logging"
	"fzp/pkg/mailer"
	"fzp/pkg/protocol"
	"fzp/pkg/report"
)

var (
	cfg       *config.Config
	processor *protocol.Processor
)

func main() {
	// Auto-load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()
	cfg = config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer cleanup()

	initDB(cfg)

	ctx := context.Background()
	storage, err := drive.New(ctx, cfg.ServiceAccountFile)
	if err != nil {
		log.Fatalf("init drive client: %v", err)
	}

	var engine report.Engine
	if !cfg.PDFDisabled {
		engine = report.WKHTMLEngine{}
	}

	processor = &protocol.Processor{
		Storage:    storage,
		RootFolder: cfg.DriveRootFolder,
		Reporter:   &report.Renderer{Engine: engine, Log: logger},
		Notifier: mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.MailTo,
			Bcc:      cfg.MailBcc,
		}),
		Recorder: &dbRecorder{db: db},
		Log:      logger,
	}

	r := gin.Default()
	setupRoutes(r)

	logger.Info("fahrzeugprotokoll webhook listening", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
