// Command ingest runs the protocol pipeline for a single JSON file, read
// from the path given as argument or from stdin. It prints the processing
// result as JSON and exits non-zero when processing failed.
//
//	./ingest protokoll.json
//	./ingest < protokoll.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"fzp/pkg/config"
	"fzp/pkg/drive"
	"fzp/pkg/logging"
	"fzp/pkg/mailer"
	"fzp/pkg/protocol"
	"fzp/pkg/report"
)

func main() {
	sendMail := flag.Bool("mail", false, "Send the summary mail after uploading")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer cleanup()

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("open %s: %v", flag.Arg(0), err)
		}
		defer f.Close()
		in = f
	}

	var sub protocol.Submission
	if err := json.NewDecoder(in).Decode(&sub); err != nil {
		log.Fatalf("decode protocol JSON: %v", err)
	}

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

	result, err := p.Process(ctx, &sub)
	if err != nil {
		log.Fatalf("processing failed: %v", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if !result.Success {
		os.Exit(1)
	}
}
