package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpcarrion/factura-ocr/constants"
)

// Config holds text-acquisition settings. Binary locations are injected so
// deployments can point at their own poppler/tesseract installs.
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "spa"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	PSM           int // tesseract page segmentation mode; 11 = sparse text, no layout assumption
	MaxPages      int // 0 = no limit
}

// Result is the outcome of one text acquisition.
type Result struct {
	Text     string
	Pages    int
	Method   string // constants.MethodPDFText | constants.MethodPDFOCR
	Language string
	Duration time.Duration
	Warnings []string
}

// Extractor acquires the linearized text of a PDF, preferring the embedded
// text layer and falling back to rasterize-and-recognize for scanned
// documents.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 11
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// scannedCharsPerPage: below this many text-layer characters per page the
// document is treated as scanned and recognition takes over.
const scannedCharsPerPage = 50

func likelyScanned(text string, pages int) bool {
	if pages < 1 {
		pages = 1
	}
	return len(text)/pages < scannedCharsPerPage
}

// Extract acquires text with the best available strategy: the embedded text
// layer when the document carries one, OCR otherwise. Only a document that
// yields to neither strategy is an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()

	text, pages, textErr := EmbeddedText(data)
	if textErr == nil && !likelyScanned(text[len(documentMarker):], pages) {
		res := Result{
			Text:     text,
			Pages:    pages,
			Method:   constants.MethodPDFText,
			Duration: time.Since(start),
		}
		e.logger.Debug("acquired embedded text layer", "pages", pages, "bytes", len(text))
		return res, nil
	}
	if textErr != nil {
		e.logger.Warn("embedded text layer unavailable, trying OCR", "error", textErr)
	} else {
		e.logger.Info("document looks scanned, trying OCR", "pages", pages, "text_bytes", len(text))
	}

	res, err := e.ExtractOCR(ctx, data)
	if err == nil {
		res.Duration = time.Since(start)
		return res, nil
	}
	// A sparse but readable text layer still beats a failed OCR run.
	if textErr == nil {
		e.logger.Warn("OCR failed, falling back to sparse text layer", "error", err)
		return Result{
			Text:     text,
			Pages:    pages,
			Method:   constants.MethodPDFText,
			Duration: time.Since(start),
			Warnings: []string{err.Error()},
		}, nil
	}
	return Result{}, err
}

// ExtractEmbedded acquires text from the embedded text layer only.
func (e *Extractor) ExtractEmbedded(data []byte) (Result, error) {
	start := time.Now()
	text, pages, err := EmbeddedText(data)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:     text,
		Pages:    pages,
		Method:   constants.MethodPDFText,
		Duration: time.Since(start),
	}, nil
}

// ExtractOCR rasterizes and recognizes every page regardless of any text layer.
func (e *Extractor) ExtractOCR(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()
	text, pages, warns, err := e.ocrPDF(ctx, data)
	if err != nil {
		return Result{Warnings: warns}, err
	}
	return Result{
		Text:     text,
		Pages:    pages,
		Method:   constants.MethodPDFOCR,
		Language: e.cfg.TesseractLang,
		Duration: time.Since(start),
		Warnings: warns,
	}, nil
}
