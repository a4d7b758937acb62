package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner simulates pdftoppm (by writing rendered page images) and
// tesseract (by returning canned text per page).
type fakeRunner struct {
	pages       int
	textForPage map[int]string
	failPages   map[int]bool
	pdftoppmErr error
}

var rePageNum = regexp.MustCompile(`page-(\d+)\.bin\.png$`)

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	if strings.Contains(name, "pdftoppm") {
		if f.pdftoppmErr != nil {
			return nil, []byte("render error"), f.pdftoppmErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			out, err := os.Create(fmt.Sprintf("%s-%d.png", prefix, i))
			if err != nil {
				return nil, nil, err
			}
			if err := png.Encode(out, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
				out.Close()
				return nil, nil, err
			}
			if err := out.Close(); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}

	// tesseract: first arg is the binarized page path
	m := rePageNum.FindStringSubmatch(args[0])
	if m == nil {
		return nil, []byte("unexpected input"), fmt.Errorf("unexpected image path %s", args[0])
	}
	page, _ := strconv.Atoi(m[1])
	if f.failPages[page] {
		return nil, []byte("recognition error"), fmt.Errorf("tesseract exit 1")
	}
	return []byte(f.textForPage[page]), nil, nil
}

func newTestExtractor(r Runner) *Extractor {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	e.runner = r
	return e
}

func TestOCRPagesKeepDocumentOrder(t *testing.T) {
	e := newTestExtractor(&fakeRunner{
		pages: 3,
		textForPage: map[int]string{
			1: "FACTURA No. 001-002-000000123",
			2: "SUBTOTAL SIN IMPUESTOS: 40.00",
			3: "VALOR TOTAL: 45.67",
		},
	})

	res, err := e.ExtractOCR(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)

	p1 := strings.Index(res.Text, "--- Página 1 ---")
	p2 := strings.Index(res.Text, "--- Página 2 ---")
	p3 := strings.Index(res.Text, "--- Página 3 ---")
	require.True(t, p1 >= 0 && p2 >= 0 && p3 >= 0)
	assert.Less(t, p1, p2)
	assert.Less(t, p2, p3)
	assert.Contains(t, res.Text, "VALOR TOTAL: 45.67")
}

func TestOCRFailedPageDegradesToEmpty(t *testing.T) {
	e := newTestExtractor(&fakeRunner{
		pages: 2,
		textForPage: map[int]string{
			1: "FACTURA",
			2: "never seen",
		},
		failPages: map[int]bool{2: true},
	})

	res, err := e.ExtractOCR(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "FACTURA")
	assert.NotContains(t, res.Text, "never seen")
	assert.Contains(t, res.Text, "--- Página 2 ---")
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "page 2")
}

func TestOCRRenderFailure(t *testing.T) {
	e := newTestExtractor(&fakeRunner{pdftoppmErr: fmt.Errorf("pdftoppm exit 1")})
	_, err := e.ExtractOCR(context.Background(), []byte("%PDF-fake"))
	assert.Error(t, err)
}

func TestOCRPageTextIsNormalized(t *testing.T) {
	e := newTestExtractor(&fakeRunner{
		pages:       1,
		textForPage: map[int]string{1: "  Razón Social:  ACME  \n\n\n"},
	})
	res, err := e.ExtractOCR(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Razon Social:  ACME")
}
