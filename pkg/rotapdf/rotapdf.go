// Package rotapdf renders the current roster to a PDF document through
// headless Chrome. The rendered bytes are cached against the roster fetch
// timestamp, so the PDF refreshes exactly when the roster does.
package rotapdf

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/oncallrota/rota-api-go/pkg/cache"
)

const renderTimeout = 30 * time.Second

var rosterTmpl = template.Must(template.New("rota").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
th { background: #eee; }
footer { margin-top: 1.5em; color: #666; font-size: 0.8em; }
</style>
</head>
<body>
<h1>On-call rota</h1>
<table>
<tr><th>Start</th><th>End</th><th>Primary</th><th>Secondary</th></tr>
{{range .Rows}}<tr><td>{{.Start}}</td><td>{{.End}}</td><td>{{.Primary}}</td><td>{{.Secondary}}</td></tr>
{{end}}</table>
<footer>Roster fetched {{.FetchedAt}}</footer>
</body>
</html>`))

// Renderer turns a roster snapshot into PDF bytes.
type Renderer struct {
	log      zerolog.Logger
	execPath string

	mu         sync.Mutex
	pdf        []byte
	renderedAt time.Time
}

// New creates a renderer. execPath optionally points at the Chrome binary
// (CHROME_PATH); empty means chromedp's default lookup.
func New(log zerolog.Logger, execPath string) *Renderer {
	return &Renderer{log: log, execPath: execPath}
}

// Render returns the PDF for the given roster snapshot, reusing the cached
// bytes while the snapshot's fetch timestamp is unchanged.
func (r *Renderer) Render(ctx context.Context, entry cache.Entry) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pdf != nil && r.renderedAt.Equal(entry.FetchedAt) {
		return r.pdf, nil
	}

	html, err := r.renderHTML(entry)
	if err != nil {
		return nil, err
	}
	pdf, err := r.printToPDF(ctx, html)
	if err != nil {
		return nil, err
	}

	r.pdf = pdf
	r.renderedAt = entry.FetchedAt
	r.log.Info().Int("bytes", len(pdf)).Msg("rota pdf rendered")
	return pdf, nil
}

func (r *Renderer) renderHTML(entry cache.Entry) (string, error) {
	var b strings.Builder
	data := struct {
		Rows      any
		FetchedAt string
	}{entry.Roster, entry.FetchedAt.Format(time.RFC1123)}
	if err := rosterTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render rota template: %w", err)
	}
	return b.String(), nil
}

func (r *Renderer) printToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, renderTimeout)
	defer cancelRun()

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print rota pdf: %w", err)
	}
	return pdf, nil
}
