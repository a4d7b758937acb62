package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jpcarrion/factura-ocr/constants"
	"github.com/jpcarrion/factura-ocr/internal/common"
)

// Extraction is one audit row for a processed document.
type Extraction struct {
	ID            uuid.UUID
	Filename      string
	Method        string
	Pages         int
	Status        constants.JobStatus
	ExtractedText string
	Payload       string
	NumeroFactura string
	Cliente       string
	ValorTotal    string
	ErrorMessage  string
	CreatedAt     time.Time
	FinishedAt    *time.Time
}

// FinishParams carries the outcome of a successful extraction.
type FinishParams struct {
	Method        string
	Pages         int
	Text          string
	PayloadJSON   []byte
	NumeroFactura string
	Cliente       string
	ValorTotal    string
}

type ExtractionRepository interface {
	Start(ctx context.Context, filename string) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, p FinishParams) error
	FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error
	List(ctx context.Context, from, to *time.Time) ([]Extraction, error)
}

type extractionRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractionRepository(db *DB, logger *slog.Logger) ExtractionRepository {
	return &extractionRepo{db: db, log: logger}
}

// Timestamps are stored as text so both drivers scan them the same way.
// The fraction is fixed-width, so lexical ORDER BY matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (r *extractionRepo) Start(ctx context.Context, filename string) (uuid.UUID, error) {
	id := uuid.New()
	q := r.db.Rebind(`INSERT INTO extraction_jobs (id, filename, status, created_at) VALUES (?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		id.String(), filename, string(constants.JobStatusRunning), time.Now().UTC().Format(timeLayout))
	if err != nil {
		r.log.Error("failed to record job start", "filename", filename, "error", err)
		return uuid.Nil, common.NewAppError("DB_WRITE_ERROR", "failed to record job start", err)
	}
	r.log.Info("job started", "job_id", id, "filename", filename)
	return id, nil
}

func (r *extractionRepo) FinishSuccess(ctx context.Context, id uuid.UUID, p FinishParams) error {
	q := r.db.Rebind(`UPDATE extraction_jobs
		SET status = ?, method = ?, pages = ?, extracted_text = ?, payload = ?,
		    numero_factura = ?, cliente = ?, valor_total = ?, finished_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		string(constants.JobStatusExtractOK), p.Method, p.Pages, p.Text, string(p.PayloadJSON),
		p.NumeroFactura, p.Cliente, p.ValorTotal,
		time.Now().UTC().Format(timeLayout), id.String())
	if err != nil {
		r.log.Error("failed to record job success", "job_id", id, "error", err)
		return common.NewAppError("DB_WRITE_ERROR", "failed to record job success", err)
	}
	r.log.Info("job finished", "job_id", id, "method", p.Method, "pages", p.Pages)
	return nil
}

func (r *extractionRepo) FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	q := r.db.Rebind(`UPDATE extraction_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		string(constants.JobStatusFailed), errMsg,
		time.Now().UTC().Format(timeLayout), id.String())
	if err != nil {
		r.log.Error("failed to record job failure", "job_id", id, "error", err)
		return common.NewAppError("DB_WRITE_ERROR", "failed to record job failure", err)
	}
	r.log.Info("job failed", "job_id", id, "reason", errMsg)
	return nil
}

// List returns jobs created inside the optional [from, to] window, oldest
// first.
func (r *extractionRepo) List(ctx context.Context, from, to *time.Time) ([]Extraction, error) {
	q := `SELECT id, filename, method, pages, status, extracted_text, payload,
		numero_factura, cliente, valor_total, error_message, created_at, finished_at
		FROM extraction_jobs`
	var (
		conds []string
		args  []any
	)
	if from != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, from.UTC().Format(timeLayout))
	}
	if to != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, to.UTC().Format(timeLayout))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, common.NewAppError("DB_READ_ERROR", "failed to list jobs", err)
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var (
			e          Extraction
			idRaw      string
			statusRaw  string
			createdRaw string
			finishRaw  string
		)
		if err := rows.Scan(&idRaw, &e.Filename, &e.Method, &e.Pages, &statusRaw,
			&e.ExtractedText, &e.Payload, &e.NumeroFactura, &e.Cliente,
			&e.ValorTotal, &e.ErrorMessage, &createdRaw, &finishRaw); err != nil {
			return nil, common.NewAppError("DB_READ_ERROR", "failed to scan job row", err)
		}
		e.ID, err = uuid.Parse(idRaw)
		if err != nil {
			return nil, common.NewAppError("DB_READ_ERROR", "malformed job id", err)
		}
		e.Status = constants.JobStatus(statusRaw)
		e.CreatedAt, err = time.Parse(timeLayout, createdRaw)
		if err != nil {
			return nil, common.NewAppError("DB_READ_ERROR", "malformed created_at", err)
		}
		if finishRaw != "" {
			t, err := time.Parse(timeLayout, finishRaw)
			if err != nil {
				return nil, common.NewAppError("DB_READ_ERROR", "malformed finished_at", err)
			}
			e.FinishedAt = &t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_READ_ERROR", "failed to iterate jobs", err)
	}
	return out, nil
}
