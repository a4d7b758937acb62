package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ocrPDF rasterizes every page with pdftoppm, preprocesses and recognizes the
// pages in parallel, and joins the per-page text behind numbered page
// markers. Results are collected by page index so the output keeps document
// order no matter which page finishes first.
//
// A page that fails to preprocess or recognize degrades to empty text with a
// warning; it never aborts the document.
func (e *Extractor) ocrPDF(ctx context.Context, data []byte) (string, int, []string, error) {
	tmpDir, err := os.MkdirTemp("", "factura-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", 0, nil, err
	}

	// pdftoppm -r <dpi> -png <doc.pdf> <prefix>
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	pageTexts := make([]string, len(matches))
	pageWarns := make([][]string, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range matches {
		g.Go(func() error {
			txt, warns, err := e.recognizePage(gctx, img)
			if err != nil {
				e.logger.Warn("page recognition failed, page degrades to empty text",
					"page", i+1, "error", err)
				pageWarns[i] = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
				return nil
			}
			pageTexts[i] = txt
			pageWarns[i] = warns
			return nil
		})
	}
	_ = g.Wait() // per-page errors never propagate
	if err := ctx.Err(); err != nil {
		return "", 0, flatten(pageWarns), err
	}

	parts := make([]string, len(pageTexts))
	for i, txt := range pageTexts {
		parts[i] = fmt.Sprintf("\n--- Página %d ---\n%s", i+1, txt)
	}
	return strings.Join(parts, "\n"), len(matches), flatten(pageWarns), nil
}

// recognizePage binarizes one rendered page and runs tesseract over it in
// sparse-text mode. The recognized text is normalized before page markers
// are attached.
func (e *Extractor) recognizePage(ctx context.Context, imgPath string) (string, []string, error) {
	binPath, err := PreprocessPNG(imgPath)
	if err != nil {
		return "", nil, fmt.Errorf("preprocess: %w", err)
	}

	// tesseract <file> stdout -l <lang> --psm <psm>
	args := []string{binPath, "stdout", "-l", e.cfg.TesseractLang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return Normalize(string(out)), nil, nil
}

func flatten(groups [][]string) []string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
