package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jpcarrion/factura-ocr/constants"
	"github.com/jpcarrion/factura-ocr/internal/pipeline"
)

// Pipeline is the processing surface the upload handler depends on.
type Pipeline interface {
	ProcessPDF(ctx context.Context, filename string, data []byte) (*pipeline.Result, error)
}

type FacturaHandler struct {
	proc           Pipeline
	maxUploadBytes int64
	log            *slog.Logger
}

func NewFacturaHandler(proc Pipeline, maxUploadBytes int64, logger *slog.Logger) *FacturaHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &FacturaHandler{proc: proc, maxUploadBytes: maxUploadBytes, log: logger}
}

var pdfMagic = []byte("%PDF")

func (h *FacturaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendJSONError(w, http.StatusMethodNotAllowed, "Metodo no permitido")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		SendJSONError(w, http.StatusBadRequest, "No se pudo leer el formulario")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, "Falta el archivo 'file'")
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if !constants.IsAllowedExt(ext) {
		SendJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Formato %s no soportado.", strings.ToLower(filepath.Ext(header.Filename))))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, "No se pudo leer el archivo")
		return
	}
	if len(data) == 0 {
		SendJSONError(w, http.StatusBadRequest, "Archivo vacio")
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		SendJSONError(w, http.StatusBadRequest, "El archivo no es un PDF valido")
		return
	}

	result, err := h.proc.ProcessPDF(r.Context(), header.Filename, data)
	if err != nil {
		h.log.Error("extraccion fallida", "filename", header.Filename, "error", err)
		SendJSONError(w, http.StatusUnprocessableEntity, "No se pudo extraer texto del documento")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
