package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jpcarrion/factura-ocr/internal/payload"
	"github.com/jpcarrion/factura-ocr/internal/pipeline"
)

// RegistroHandler submits an already-assembled payload to the registration
// service, bypassing extraction.
type RegistroHandler struct {
	registro pipeline.Registrador
	log      *slog.Logger
}

func NewRegistroHandler(registro pipeline.Registrador, logger *slog.Logger) *RegistroHandler {
	return &RegistroHandler{registro: registro, log: logger}
}

func (h *RegistroHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendJSONError(w, http.StatusMethodNotAllowed, "Metodo no permitido")
		return
	}

	var p payload.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		SendJSONError(w, http.StatusBadRequest, "Payload invalido")
		return
	}

	result := h.registro.Enviar(r.Context(), &p)
	writeJSON(w, http.StatusOK, result)
}
