// Package extract turns normalized invoice text into a typed invoice record.
//
// The rule set is a fixed battery of patterns for one SRI invoice template
// family. Every field is evaluated independently: one pattern, one outcome.
// A field that fails to match degrades to its default and the rest of the
// record is unaffected.
package extract

import (
	"log/slog"
	"strings"

	"github.com/jpcarrion/factura-ocr/internal/entity"
)

type Extractor struct {
	log *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{log: logger}
}

// Invoice runs the three independent extraction passes over the same
// normalized text. Extraction never fails: absence is a value, not an error.
// Fields that stayed empty are reported in one collective warning.
func (e *Extractor) Invoice(text string) *entity.Invoice {
	totales := e.Totals(text)
	inv := &entity.Invoice{
		Header:     e.HeaderFields(text),
		Detalles:   e.LineItems(text),
		Totales:    totales,
		FormasPago: e.PaymentMethods(text, totales.ValorTotal),
	}
	if missing := missingFields(inv); len(missing) > 0 {
		e.log.Warn("campos faltantes en la extraccion", "campos", strings.Join(missing, ", "))
	}
	return inv
}

// missingFields lists the header fields whose pattern did not match, by
// their payload key names, plus detalles when no line item was recognized.
func missingFields(inv *entity.Invoice) []string {
	h := &inv.Header
	checks := []struct {
		name  string
		value *string
	}{
		{"empresaNombreComercial", h.EmpresaNombreComercial},
		{"empresaRazonSocial", h.EmpresaRazonSocial},
		{"empresaRuc", h.EmpresaRuc},
		{"empresaContribuyenteEspecial", h.EmpresaContribuyenteEspecial},
		{"empresaDireccionMatriz", h.EmpresaDireccionMatriz},
		{"empresaDireccionSucursal", h.EmpresaDireccionSucursal},
		{"clienteNombre", h.ClienteNombre},
		{"clienteIdentificacion", h.ClienteIdentificacion},
		{"clienteCorreo", h.ClienteCorreo},
		{"numeroFactura", h.NumeroFactura},
		{"numeroAutorizacion", h.NumeroAutorizacion},
		{"claveAcceso", h.ClaveAcceso},
		{"fechaEmision", h.FechaEmision},
		{"horaAutorizacion", h.HoraAutorizacion},
		{"placaMatricula", h.PlacaMatricula},
	}
	var missing []string
	for _, c := range checks {
		if c.value == nil || *c.value == "" {
			missing = append(missing, c.name)
		}
	}
	if len(inv.Detalles) == 0 {
		missing = append(missing, "detalles")
	}
	return missing
}
