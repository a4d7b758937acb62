package server

import "net/http"

// NewMux assembles the service routes. The export handler is optional so
// the extraction-only CLI paths can reuse the wiring.
func NewMux(factura *FacturaHandler, registro *RegistroHandler, exp *ExportHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/factura/", factura)
	mux.Handle("/registrar/", registro)
	if exp != nil {
		mux.Handle("/facturas/export", exp)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}
