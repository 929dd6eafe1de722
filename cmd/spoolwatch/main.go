// Command spoolwatch watches a drop folder for protocol JSON files and runs
// each one through the pipeline. Processed files are renamed to *.done,
// failed ones to *.failed, so a crashed run never reprocesses silently.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"fzp/pkg/config"
	"fzp/pkg/drive"
	"fzp/pkg/logging"
	"fzp/pkg/mailer"
	"fzp/pkg/protocol"
	"fzp/pkg/report"
)

func main() {
	dir := flag.String("dir", "spool", "directory to watch for protocol JSON files")
	sendMail := flag.Bool("mail", true, "Send the summary mail after uploading")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	storage, err := drive.New(ctx, cfg.ServiceAccountFile)
	if err != nil {
		log.Fatalf("init drive client: %v", err)
	}

	p := &protocol.Processor{
		Storage:    storage,
		RootFolder: cfg.DriveRootFolder,
		Log:        logger,
	}
	if *sendMail {
		var engine report.Engine
		if !cfg.PDFDisabled {
			engine = report.WKHTMLEngine{}
		}
		p.Reporter = &report.Renderer{Engine: engine, Log: logger}
		p.Notifier = mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.MailTo,
			Bcc:      cfg.MailBcc,
		})
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("create spool dir: %v", err)
	}

	// catch up on files that arrived while we were down
	entries, _ := os.ReadDir(*dir)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			processFile(ctx, p, logger, filepath.Join(*dir, e.Name()))
		}
	}

	if err := watch(ctx, p, logger, *dir); err != nil {
		log.Fatalf("watch %s: %v", *dir, err)
	}
}

func watch(ctx context.Context, p *protocol.Processor, logger *slog.Logger, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watching spool directory", "dir", dir)

	// debounce: editors and uploaders fire several events per file
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-ticker.C:
			for path, seen := range pending {
				if time.Since(seen) < 500*time.Millisecond {
					continue
				}
				delete(pending, path)
				processFile(ctx, p, logger, path)
			}
		}
	}
}

func processFile(ctx context.Context, p *protocol.Processor, logger *slog.Logger, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read spool file failed", "file", path, "error", err)
		return
	}
	var sub protocol.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		logger.Warn("invalid protocol JSON", "file", path, "error", err)
		markDone(logger, path, ".failed")
		return
	}
	result, err := p.Process(ctx, &sub)
	if err != nil || !result.Success {
		if err != nil {
			logger.Warn("processing failed", "file", path, "error", err)
		} else {
			logger.Warn("protocol rejected", "file", path, "reason", result.Error)
		}
		markDone(logger, path, ".failed")
		return
	}
	logger.Info("protocol processed", "file", path, "uploaded", result.UploadedFiles, "folder", result.DriveLink)
	markDone(logger, path, ".done")
}

func markDone(logger *slog.Logger, path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		logger.Warn("rename spool file failed", "file", path, "error", err)
	}
}
