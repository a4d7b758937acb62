package pipeline

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpcarrion/factura-ocr/constants"
	"github.com/jpcarrion/factura-ocr/internal/extract"
	"github.com/jpcarrion/factura-ocr/internal/ocr"
	"github.com/jpcarrion/factura-ocr/internal/payload"
	"github.com/jpcarrion/factura-ocr/internal/repository"
)

type fakeAcquirer struct {
	text string
	err  error
}

func (f *fakeAcquirer) Extract(context.Context, []byte) (ocr.Result, error) {
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text, Pages: 1, Method: constants.MethodPDFText}, nil
}

type fakeJobs struct {
	started   []string
	succeeded []repository.FinishParams
	failed    []string
	startErr  error
	finishErr error
}

func (f *fakeJobs) Start(_ context.Context, filename string) (uuid.UUID, error) {
	if f.startErr != nil {
		return uuid.Nil, f.startErr
	}
	f.started = append(f.started, filename)
	return uuid.New(), nil
}

func (f *fakeJobs) FinishSuccess(_ context.Context, _ uuid.UUID, p repository.FinishParams) error {
	if f.finishErr != nil {
		return f.finishErr
	}
	f.succeeded = append(f.succeeded, p)
	return nil
}

func (f *fakeJobs) FinishFailure(_ context.Context, _ uuid.UUID, msg string) error {
	f.failed = append(f.failed, msg)
	return nil
}

func (f *fakeJobs) List(context.Context, *time.Time, *time.Time) ([]repository.Extraction, error) {
	return nil, nil
}

type fakeRegistro struct {
	got *payload.Payload
	out map[string]any
}

func (f *fakeRegistro) Enviar(_ context.Context, p *payload.Payload) map[string]any {
	f.got = p
	return f.out
}

func newTestProcessor(acq TextAcquirer, jobs repository.ExtractionRepository, reg Registrador) *Processor {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewProcessor(acq, extract.NewExtractor(logger), payload.NewAssembler(logger), jobs, reg, logger)
}

func TestProcessPDFHappyPath(t *testing.T) {
	jobs := &fakeJobs{}
	reg := &fakeRegistro{out: map[string]any{"id": "reg-1"}}
	proc := newTestProcessor(&fakeAcquirer{
		text: "R.U.C. : 1790016919001\nFACTURA No. 001-002-000000123\nVALOR TOTAL: 45.67",
	}, jobs, reg)

	res, err := proc.ProcessPDF(context.Background(), "factura.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, res.Payload)

	assert.Equal(t, "001-002-000000123", res.Payload.Factura)
	assert.Equal(t, "1790016919001", res.Payload.EmpresaRuc)
	assert.Equal(t, "reg-1", res.Registro["id"])

	require.Len(t, jobs.started, 1)
	require.Len(t, jobs.succeeded, 1)
	assert.Equal(t, "45.67", jobs.succeeded[0].ValorTotal)
	assert.Equal(t, "001-002-000000123", jobs.succeeded[0].NumeroFactura)
	require.NotNil(t, reg.got)
}

func TestProcessPDFUnreadableDocument(t *testing.T) {
	jobs := &fakeJobs{}
	proc := newTestProcessor(&fakeAcquirer{err: assert.AnError}, jobs, nil)

	_, err := proc.ProcessPDF(context.Background(), "broken.pdf", []byte("%PDF"))
	require.Error(t, err)
	require.Len(t, jobs.failed, 1)
	assert.Empty(t, jobs.succeeded)
}

func TestProcessPDFTextIsNormalizedBeforeExtraction(t *testing.T) {
	// diacritics from the acquisition stage must not defeat the patterns
	proc := newTestProcessor(&fakeAcquirer{text: "Identificacién 1712345678"}, nil, nil)

	res, err := proc.ProcessPDF(context.Background(), "f.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "1712345678", res.Payload.ClienteIdentificacion)
}

func TestProcessPDFAuditFailuresDoNotAbort(t *testing.T) {
	jobs := &fakeJobs{startErr: assert.AnError, finishErr: assert.AnError}
	proc := newTestProcessor(&fakeAcquirer{text: "VALOR TOTAL: 10.00"}, jobs, nil)

	res, err := proc.ProcessPDF(context.Background(), "f.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, res.JobID)
	require.NotNil(t, res.Payload)
	assert.Equal(t, "10.00", res.Payload.Totales.ValorTotal.StringFixed(2))
}

func TestProcessPDFWithoutRegistro(t *testing.T) {
	proc := newTestProcessor(&fakeAcquirer{text: "VALOR TOTAL: 10.00"}, nil, nil)
	res, err := proc.ProcessPDF(context.Background(), "f.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Nil(t, res.Registro)
}
