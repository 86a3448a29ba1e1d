package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/klytics/santekit/internal/report"
)

// DefaultTimeout bounds one PDF print.
const DefaultTimeout = 60 * time.Second

// A4 paper size in inches, as the print protocol expects.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// ErrNoBrowser is returned when no Chromium executable can be found.
var ErrNoBrowser = errors.New("no Chromium or Chrome executable found")

// chromeCandidates are probed in order when no path is configured.
var chromeCandidates = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// DetectChromePath returns the first installed browser of chromeCandidates,
// or "" when none is.
func DetectChromePath() string {
	for _, p := range chromeCandidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// PDFRenderer prints the HTML rendition of a document to A4 PDF with a
// headless Chromium. Page size and margins come from the document's CSS.
type PDFRenderer struct {
	HTML       *HTMLRenderer
	ChromePath string
	Timeout    time.Duration
}

// NewPDFRenderer returns a renderer using chromePath, or the detected
// browser when it is empty.
func NewPDFRenderer(chromePath string, timeout time.Duration) *PDFRenderer {
	if chromePath == "" {
		chromePath = DetectChromePath()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PDFRenderer{HTML: NewHTMLRenderer(), ChromePath: chromePath, Timeout: timeout}
}

// Ext implements report.Renderer.
func (r *PDFRenderer) Ext() string { return "pdf" }

// Render implements report.Renderer. The HTML is written into the build
// context and loaded from disk so large inlined images do not go through
// the navigation URL.
func (r *PDFRenderer) Render(ctx context.Context, doc *report.Document, bc *report.BuildContext) ([]byte, error) {
	htmlDoc, err := r.HTML.BuildHTML(doc)
	if err != nil {
		return nil, err
	}
	path := bc.Path(report.ArtifactHTML)
	if err := os.WriteFile(path, []byte(htmlDoc), 0o600); err != nil {
		return nil, fmt.Errorf("could not write %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("html", path).Str("chrome", r.ChromePath).Msg("printing report")
	return r.Print(ctx, fileURL(path))
}

// Print loads target in a fresh headless browser and prints it.
func (r *PDFRenderer) Print(ctx context.Context, target string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
	}
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		if r.ChromePath == "" {
			return nil, fmt.Errorf("%w: %v", ErrNoBrowser, err)
		}
		return nil, fmt.Errorf("could not print PDF: %w", err)
	}
	return pdf, nil
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
