package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jpcarrion/factura-ocr/internal/export"
)

type ExportHandler struct {
	svc *export.Service
	log *slog.Logger
}

func NewExportHandler(svc *export.Service, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, log: logger}
}

const dateLayout = "2006-01-02"

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		SendJSONError(w, http.StatusMethodNotAllowed, "Metodo no permitido")
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, "Parametro 'from' invalido, use YYYY-MM-DD")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, "Parametro 'to' invalido, use YYYY-MM-DD")
			return
		}
		to = &t
	}

	data, err := h.svc.ExportExtractionsXLSX(r.Context(), from, to)
	if err != nil {
		h.log.Error("exportacion fallida", "error", err)
		SendJSONError(w, http.StatusInternalServerError, "No se pudo generar la exportacion")
		return
	}

	filename := fmt.Sprintf("facturas-%s.xlsx", time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
