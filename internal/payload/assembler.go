// Package payload shapes an extracted invoice into the structure the
// registration service accepts, applying the service's defaulting rules.
package payload

import (
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jpcarrion/factura-ocr/internal/entity"
)

func init() {
	// The registration service expects bare JSON numbers for amounts, not
	// quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Defaults applied to header fields the extraction could not recover.
const (
	NotFound       = "No encontrado"
	DefaultFactura = "FAC-XXXX-0000"
	DefaultCliente = "Cliente Desconocido"
)

// Resumen is the compact summary embedded alongside the full payload.
type Resumen struct {
	Factura string          `json:"factura"`
	Cliente string          `json:"cliente"`
	Total   decimal.Decimal `json:"total"`
}

// Payload is the outbound registration document. Every header field is a
// concrete string: the assembler guarantees no nils survive.
type Payload struct {
	EmpresaNombreComercial       string             `json:"empresaNombreComercial"`
	EmpresaRazonSocial           string             `json:"empresaRazonSocial"`
	EmpresaRuc                   string             `json:"empresaRuc"`
	EmpresaContribuyenteEspecial string             `json:"empresaContribuyenteEspecial"`
	EmpresaObligadoContabilidad  bool               `json:"empresaObligadoContabilidad"`
	EmpresaDireccionMatriz       string             `json:"empresaDireccionMatriz"`
	EmpresaDireccionSucursal     string             `json:"empresaDireccionSucursal"`
	ClienteNombre                string             `json:"clienteNombre"`
	ClienteIdentificacion        string             `json:"clienteIdentificacion"`
	ClienteCorreo                string             `json:"clienteCorreo"`
	Factura                      string             `json:"factura"`
	NumeroFactura                string             `json:"numeroFactura"`
	NumeroAutorizacion           string             `json:"numeroAutorizacion"`
	ClaveAcceso                  string             `json:"claveAcceso"`
	FechaEmision                 string             `json:"fechaEmision"`
	HoraAutorizacion             string             `json:"horaAutorizacion"`
	Ambiente                     string             `json:"ambiente"`
	Emision                      string             `json:"emision"`
	PlacaMatricula               string             `json:"placaMatricula"`
	Detalles                     []entity.Detalle   `json:"detalles"`
	Totales                      entity.Totales     `json:"totales"`
	FormasPago                   []entity.FormaPago `json:"formasPago"`
	JSONFactura                  Resumen            `json:"jsonFactura"`
}

// Assembler turns an Invoice into a Payload.
type Assembler struct {
	log *slog.Logger
}

func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{log: logger}
}

// Build applies the defaulting rules and composes the summary. Schema
// validation is advisory: a shape problem is logged, never fatal.
func (a *Assembler) Build(inv *entity.Invoice) *Payload {
	h := inv.Header
	p := &Payload{
		EmpresaNombreComercial:       orDefault(h.EmpresaNombreComercial, NotFound),
		EmpresaRazonSocial:           orDefault(h.EmpresaRazonSocial, NotFound),
		EmpresaRuc:                   orDefault(h.EmpresaRuc, NotFound),
		EmpresaContribuyenteEspecial: orDefault(h.EmpresaContribuyenteEspecial, NotFound),
		EmpresaObligadoContabilidad:  h.EmpresaObligadoContabilidad,
		EmpresaDireccionMatriz:       orDefault(h.EmpresaDireccionMatriz, NotFound),
		EmpresaDireccionSucursal:     orDefault(h.EmpresaDireccionSucursal, NotFound),
		ClienteNombre:                orDefault(h.ClienteNombre, DefaultCliente),
		ClienteIdentificacion:        orDefault(h.ClienteIdentificacion, NotFound),
		ClienteCorreo:                orDefault(h.ClienteCorreo, NotFound),
		// the registration service reads the invoice number under both keys
		Factura:                      orDefault(h.NumeroFactura, DefaultFactura),
		NumeroFactura:                orDefault(h.NumeroFactura, DefaultFactura),
		NumeroAutorizacion:           orDefault(h.NumeroAutorizacion, NotFound),
		ClaveAcceso:                  orDefault(h.ClaveAcceso, NotFound),
		FechaEmision:                 orDefault(h.FechaEmision, NotFound),
		HoraAutorizacion:             orDefault(h.HoraAutorizacion, NotFound),
		Ambiente:                     h.Ambiente,
		Emision:                      h.Emision,
		PlacaMatricula:               orDefault(h.PlacaMatricula, NotFound),
		Detalles:                     inv.Detalles,
		Totales:                      inv.Totales,
		FormasPago:                   inv.FormasPago,
	}
	if p.Detalles == nil {
		p.Detalles = []entity.Detalle{}
	}
	if p.FormasPago == nil {
		p.FormasPago = []entity.FormaPago{}
	}
	p.JSONFactura = Resumen{
		Factura: p.Factura,
		Cliente: p.ClienteNombre,
		Total:   p.Totales.ValorTotal,
	}

	if err := Validate(p); err != nil {
		a.log.Warn("payload no cumple el esquema", "error", err)
	}
	return p
}

func orDefault(v *string, def string) string {
	if v != nil && *v != "" {
		return *v
	}
	return def
}

// UnmarshalJSON accepts the structural fields (detalles, totales, formasPago,
// jsonFactura) either inline or as embedded JSON strings, so documents in
// wire form round-trip back into a Payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	type alias Payload
	aux := struct {
		*alias
		Detalles    json.RawMessage `json:"detalles"`
		Totales     json.RawMessage `json:"totales"`
		FormasPago  json.RawMessage `json:"formasPago"`
		JSONFactura json.RawMessage `json:"jsonFactura"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := unmarshalMaybeEmbedded(aux.Detalles, &p.Detalles); err != nil {
		return err
	}
	if err := unmarshalMaybeEmbedded(aux.Totales, &p.Totales); err != nil {
		return err
	}
	if err := unmarshalMaybeEmbedded(aux.FormasPago, &p.FormasPago); err != nil {
		return err
	}
	return unmarshalMaybeEmbedded(aux.JSONFactura, &p.JSONFactura)
}

// unmarshalMaybeEmbedded decodes a value that arrives either directly or as
// a JSON string holding the encoded value.
func unmarshalMaybeEmbedded(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	return json.Unmarshal(raw, dst)
}

// WireForm renders the payload as the flat form the registration endpoint
// consumes: scalar fields stay as-is while the structural fields (detalles,
// totales, formasPago, jsonFactura) are embedded as JSON strings.
func (p *Payload) WireForm() (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var form map[string]any
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, err
	}
	for _, key := range []string{"detalles", "totales", "formasPago", "jsonFactura"} {
		embedded, err := json.Marshal(form[key])
		if err != nil {
			return nil, err
		}
		form[key] = string(embedded)
	}
	return form, nil
}
