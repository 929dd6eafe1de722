package report

import (
	"bytes"
	"context"
	"fmt"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// WKHTMLEngine renders HTML to PDF with a local wkhtmltopdf binary.
type WKHTMLEngine struct{}

func (WKHTMLEngine) Render(ctx context.Context, html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("init wkhtmltopdf: %w", err)
	}
	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(false)
	pdfg.AddPage(page)
	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
