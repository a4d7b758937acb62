package entity

import "github.com/shopspring/decimal"

// Extractor-level defaults for the two enum-like header fields.
const (
	AmbienteProduccion = "PRODUCCION"
	EmisionNormal      = "NORMAL"
)

// Header holds the scalar fields recovered from the invoice text.
// Pointer fields are nil when the corresponding pattern did not match;
// defaulting for the outbound payload happens in the assembler, not here.
type Header struct {
	EmpresaNombreComercial       *string
	EmpresaRazonSocial           *string
	EmpresaRuc                   *string
	EmpresaContribuyenteEspecial *string
	EmpresaObligadoContabilidad  bool
	EmpresaDireccionMatriz       *string
	EmpresaDireccionSucursal     *string
	ClienteNombre                *string
	ClienteIdentificacion        *string
	ClienteCorreo                *string
	NumeroFactura                *string
	NumeroAutorizacion           *string
	ClaveAcceso                  *string
	FechaEmision                 *string
	HoraAutorizacion             *string
	Ambiente                     string // defaulted to AmbienteProduccion by the extractor
	Emision                      string // defaulted to EmisionNormal by the extractor
	PlacaMatricula               *string
}

// Detalle is one invoice line item, in document order.
// Cantidad is always the literal "1": the template's row layout exposes no
// recoverable quantity column.
type Detalle struct {
	CodigoPrincipal   string          `json:"codigo_principal"`
	CodigoAuxiliar    string          `json:"codigo_auxiliar"`
	Cantidad          string          `json:"cantidad"`
	Descripcion       string          `json:"descripcion"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	Subsidio          decimal.Decimal `json:"subsidio"`
	PrecioSinSubsidio decimal.Decimal `json:"precio_sin_subsidio"`
	Descuento         decimal.Decimal `json:"descuento"`
	PrecioTotal       decimal.Decimal `json:"precio_total"`
}

// Totales holds the twelve labeled totals. An absent or unparsable value is
// exactly 0.00, never an error.
type Totales struct {
	SubtotalTarifaEspecial decimal.Decimal `json:"subtotal_tarifa_especial"`
	SubtotalNoObjetoIVA    decimal.Decimal `json:"subtotal_no_objeto_iva"`
	SubtotalExentoIVA      decimal.Decimal `json:"subtotal_exento_iva"`
	SubtotalSinImpuestos   decimal.Decimal `json:"subtotal_sin_impuestos"`
	TotalDescuento         decimal.Decimal `json:"total_descuento"`
	ICE                    decimal.Decimal `json:"ice"`
	IVATarifaEspecial      decimal.Decimal `json:"iva_tarifa_especial"`
	IRBPNR                 decimal.Decimal `json:"irbpnr"`
	Propina                decimal.Decimal `json:"propina"`
	ValorTotal             decimal.Decimal `json:"valor_total"`
	ValorTotalSinSubsidio  decimal.Decimal `json:"valor_total_sin_subsidio"`
	AhorroSubsidio         decimal.Decimal `json:"ahorro_subsidio"`
}

// FormaPago is one inferred payment method entry.
type FormaPago struct {
	CodigoPago      string          `json:"codigo_pago"`
	DescripcionPago string          `json:"descripcion_pago"`
	Valor           decimal.Decimal `json:"valor"`
}

// Invoice is the canonical output of the extraction pipeline. It is built
// once per request and not mutated afterwards.
type Invoice struct {
	Header     Header
	Detalles   []Detalle
	Totales    Totales
	FormasPago []FormaPago
}
