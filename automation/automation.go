package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrNoBrowser is returned when no Chrome/Chromium/Edge installation can be found.
var ErrNoBrowser = errors.New("no Chromium based browser found for printing")

// A4 in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.4
)

// Printer renders HTML pages to PDF with a headless browser. One job runs at a time.
type Printer struct {
	BinPath string
	Timeout time.Duration

	mu sync.Mutex
}

// NewPrinter looks up a locally installed browser. It never downloads one.
func NewPrinter() (*Printer, error) {
	path, ok := launcher.LookPath()
	if !ok {
		return nil, ErrNoBrowser
	}
	return &Printer{BinPath: path, Timeout: 60 * time.Second}, nil
}

// PrintPDF loads html into a blank page and prints it.
func (p *Printer) PrintPDF(ctx context.Context, html []byte, landscape bool) ([]byte, error) {
	if p == nil || p.BinPath == "" {
		return nil, ErrNoBrowser
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	log := zap.L().Named("printer")
	start := time.Now()

	// Leakless(false) keeps antivirus software from flagging the helper binary.
	l := launcher.New().Bin(p.BinPath).Headless(true).Leakless(false).Context(ctx)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("document did not load: %w", err)
	}

	width, height, m := paperWidth, paperHeight, margin
	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:       landscape,
		PrintBackground: true,
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &m,
		MarginBottom:    &m,
		MarginLeft:      &m,
		MarginRight:     &m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print page: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read printed PDF: %w", err)
	}

	log.Info("printed PDF", zap.Int("bytes", len(pdf)), zap.Duration("took", time.Since(start)))
	return pdf, nil
}
