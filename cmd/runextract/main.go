// runextract runs the extraction pipeline against a single PDF and prints
// the assembled payload. No database and no registration, useful for tuning
// patterns against real documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jpcarrion/factura-ocr/internal/common"
	"github.com/jpcarrion/factura-ocr/internal/extract"
	"github.com/jpcarrion/factura-ocr/internal/ocr"
	"github.com/jpcarrion/factura-ocr/internal/payload"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <invoice.pdf>\n", os.Args[0])
		os.Exit(2)
	}
	path := os.Args[1]

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := common.LoadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read file", "path", path, "error", err)
		os.Exit(1)
	}

	acquirer := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		PSM:           cfg.OCR.PSM,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	start := time.Now()
	res, err := acquirer.Extract(context.Background(), data)
	if err != nil {
		logger.Error("text acquisition failed", "path", path, "error", err)
		os.Exit(1)
	}

	text := ocr.Normalize(res.Text)
	inv := extract.NewExtractor(logger).Invoice(text)
	pl := payload.NewAssembler(logger).Build(inv)

	out, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		logger.Error("failed to encode payload", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	logger.Info("extraction complete",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"duration", time.Since(start).String())
}
