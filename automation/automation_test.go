package automation

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrintPDF(t *testing.T) {
	p, err := NewPrinter()
	if errors.Is(err, ErrNoBrowser) {
		t.Skip("no browser installed")
	}
	if err != nil {
		t.Fatal(err)
	}

	pdf, err := p.PrintPDF(context.Background(), []byte("<html><body><h1>Запчасти</h1></body></html>"), false)
	if err != nil {
		t.Fatalf("PrintPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output is not a PDF: %q", pdf[:min(len(pdf), 16)])
	}
}

func TestPrintWithoutBrowser(t *testing.T) {
	var p *Printer
	if _, err := p.PrintPDF(context.Background(), []byte("<p>x</p>"), false); !errors.Is(err, ErrNoBrowser) {
		t.Errorf("expected ErrNoBrowser, got %v", err)
	}

	rec := httptest.NewRecorder()
	PrintHTMLHandler(&Printer{})(rec, httptest.NewRequest(http.MethodPost, "/api/print/pdf", strings.NewReader("<p>x</p>")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	PrintHTMLHandler(&Printer{})(rec, httptest.NewRequest(http.MethodPost, "/api/print/pdf", strings.NewReader("")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}
