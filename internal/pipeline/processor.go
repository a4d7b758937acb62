// Package pipeline orchestrates a single invoice extraction: text
// acquisition, field extraction, payload assembly, audit recording, and
// optional registration.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jpcarrion/factura-ocr/internal/common"
	"github.com/jpcarrion/factura-ocr/internal/extract"
	"github.com/jpcarrion/factura-ocr/internal/ocr"
	"github.com/jpcarrion/factura-ocr/internal/payload"
	"github.com/jpcarrion/factura-ocr/internal/repository"
)

// TextAcquirer produces the raw document text from PDF bytes.
type TextAcquirer interface {
	Extract(ctx context.Context, data []byte) (ocr.Result, error)
}

// Registrador submits a payload to the external registration service.
type Registrador interface {
	Enviar(ctx context.Context, p *payload.Payload) map[string]any
}

// Result is the response body for one processed document.
type Result struct {
	JobID    uuid.UUID        `json:"job_id"`
	Filename string           `json:"filename"`
	Payload  *payload.Payload `json:"payload"`
	Registro map[string]any   `json:"registro,omitempty"`
}

type Processor struct {
	Acquirer  TextAcquirer
	Extractor *extract.Extractor
	Assembler *payload.Assembler
	Jobs      repository.ExtractionRepository
	Registro  Registrador
	Logger    *slog.Logger
}

// NewProcessor wires the pipeline. Jobs and Registro are optional: a nil
// repository skips the audit trail, a nil registrador skips submission.
func NewProcessor(acquirer TextAcquirer, extractor *extract.Extractor, assembler *payload.Assembler,
	jobs repository.ExtractionRepository, registro Registrador, logger *slog.Logger) *Processor {
	return &Processor{
		Acquirer:  acquirer,
		Extractor: extractor,
		Assembler: assembler,
		Jobs:      jobs,
		Registro:  registro,
		Logger:    logger,
	}
}

// ProcessPDF runs the full pipeline for one uploaded document. Audit
// failures are logged and never abort the extraction.
func (p *Processor) ProcessPDF(ctx context.Context, filename string, data []byte) (*Result, error) {
	jobID := p.startJob(ctx, filename)

	res, err := p.Acquirer.Extract(ctx, data)
	if err != nil {
		p.failJob(ctx, jobID, err.Error())
		return nil, common.NewAppError("PDF_UNREADABLE", "no text could be extracted from the document", err)
	}
	for _, w := range res.Warnings {
		p.Logger.Warn("degraded page during acquisition", "filename", filename, "warning", w)
	}

	text := ocr.Normalize(res.Text)
	inv := p.Extractor.Invoice(text)
	pl := p.Assembler.Build(inv)

	p.finishJob(ctx, jobID, res, text, pl)

	out := &Result{JobID: jobID, Filename: filename, Payload: pl}
	if p.Registro != nil {
		out.Registro = p.Registro.Enviar(ctx, pl)
	}
	return out, nil
}

func (p *Processor) startJob(ctx context.Context, filename string) uuid.UUID {
	if p.Jobs == nil {
		return uuid.Nil
	}
	id, err := p.Jobs.Start(ctx, filename)
	if err != nil {
		p.Logger.Error("audit start failed", "filename", filename, "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Processor) failJob(ctx context.Context, id uuid.UUID, msg string) {
	if p.Jobs == nil || id == uuid.Nil {
		return
	}
	if err := p.Jobs.FinishFailure(ctx, id, msg); err != nil {
		p.Logger.Error("audit failure record failed", "job_id", id, "error", err)
	}
}

func (p *Processor) finishJob(ctx context.Context, id uuid.UUID, res ocr.Result, text string, pl *payload.Payload) {
	if p.Jobs == nil || id == uuid.Nil {
		return
	}
	raw, err := json.Marshal(pl)
	if err != nil {
		p.Logger.Error("audit payload marshal failed", "job_id", id, "error", err)
		raw = nil
	}
	params := repository.FinishParams{
		Method:        res.Method,
		Pages:         res.Pages,
		Text:          text,
		PayloadJSON:   raw,
		NumeroFactura: pl.Factura,
		Cliente:       pl.ClienteNombre,
		ValorTotal:    pl.Totales.ValorTotal.StringFixed(2),
	}
	if err := p.Jobs.FinishSuccess(ctx, id, params); err != nil {
		p.Logger.Error("audit success record failed", "job_id", id, "error", err)
	}
}
