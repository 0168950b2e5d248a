package export

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/FAb114/factusystem-reports/pkg/logger"
)

const defaultRenderTimeout = 30 * time.Second

// PDFConfig configures the headless-Chrome PDF renderer.
type PDFConfig struct {
	// Timeout for a single render (default 30s).
	Timeout time.Duration
	// RemoteURL points at a remote Chrome instance; empty launches one locally.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root).
	NoSandbox bool
}

// PDFRenderer renders report tables to PDF through the Chrome DevTools
// protocol.
type PDFRenderer struct {
	cfg         PDFConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewPDFRenderer creates a PDF renderer backed by a Chrome allocator.
func NewPDFRenderer(cfg PDFConfig) *PDFRenderer {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRenderTimeout
	}

	r := &PDFRenderer{cfg: cfg}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // needed in Docker
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Close releases the Chrome allocator.
func (r *PDFRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// WritePDF renders a table as a PDF document.
func (r *PDFRenderer) WritePDF(ctx context.Context, w io.Writer, t Table) error {
	html, err := renderHTML(t)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	data, err := r.print(ctx, html)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *PDFRenderer) print(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx)
	defer browserCancel()

	start := time.Now()
	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("pdf render timed out after %v", r.cfg.Timeout)
		}
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("generated pdf is empty")
	}

	logger.Debug(ctx, "pdf rendered",
		"bytes", len(pdfData),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pdfData, nil
}

var tableTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
	body { font-family: sans-serif; font-size: 12px; margin: 24px; }
	h1 { font-size: 16px; }
	table { border-collapse: collapse; width: 100%; }
	th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
	th { background: #eee; }
	tfoot td { font-weight: bold; background: #f6f6f6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
{{if .Footer}}<tfoot><tr>{{range .Footer}}<td>{{.}}</td>{{end}}</tr></tfoot>{{end}}
</table>
</body>
</html>`))

func renderHTML(t Table) (string, error) {
	var sb strings.Builder
	if err := tableTemplate.Execute(&sb, t); err != nil {
		return "", err
	}
	return sb.String(), nil
}
