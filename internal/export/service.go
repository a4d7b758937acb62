// Package export renders the audit trail of processed invoices as an XLSX
// workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jpcarrion/factura-ocr/internal/common"
	"github.com/jpcarrion/factura-ocr/internal/repository"
)

type Service struct {
	jobs   repository.ExtractionRepository
	logger *slog.Logger
}

func NewService(jobs repository.ExtractionRepository, logger *slog.Logger) *Service {
	return &Service{jobs: jobs, logger: logger}
}

var exportHeaders = []string{
	"Archivo", "Factura", "Cliente", "Valor Total", "Metodo", "Paginas", "Estado", "Procesado",
}

// ExportExtractionsXLSX builds a workbook for jobs inside the optional date
// window. A from-only window runs to now; a to-only window starts at zero.
func (s *Service) ExportExtractionsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	// Normalize date-only bounds to cover whole days.
	if from != nil {
		f := from.Truncate(24 * time.Hour)
		from = &f
	}
	if to != nil {
		t := to.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
		to = &t
	}

	jobs, err := s.jobs.List(ctx, from, to)
	if err != nil {
		return nil, common.NewAppError("EXPORT_ERROR", "failed to load jobs", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Facturas"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, common.NewAppError("EXPORT_ERROR", "failed to create sheet", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, common.NewAppError("EXPORT_ERROR", "failed to address header cell", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, common.NewAppError("EXPORT_ERROR", "failed to write header", err)
		}
	}

	for row, j := range jobs {
		finished := ""
		if j.FinishedAt != nil {
			finished = j.FinishedAt.Format("2006-01-02 15:04:05")
		}
		values := []any{
			j.Filename, j.NumeroFactura, j.Cliente, j.ValorTotal,
			j.Method, j.Pages, string(j.Status), finished,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, common.NewAppError("EXPORT_ERROR", "failed to address cell", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, common.NewAppError("EXPORT_ERROR", fmt.Sprintf("failed to write row %d", row+2), err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError("EXPORT_ERROR", "failed to serialize workbook", err)
	}
	s.logger.Info("export generated", "jobs", len(jobs), "bytes", buf.Len())
	return buf.Bytes(), nil
}
