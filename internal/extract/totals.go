package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jpcarrion/factura-ocr/internal/entity"
)

// Totals block patterns. Two labels come out of the recognizer mangled for
// this template ("froralbescuento" for TOTAL DESCUENTO, "propma" for
// PROPINA); the alternations are non-capturing so group 1 is always the
// numeric value.
var (
	reSubtotalTarifaEspecial = regexp.MustCompile(`(?i)SUBTOTAL TARIFA ESPECIAL\s*[:$]?\s*(\d+\.\d{2})`)
	reSubtotalNoObjetoIVA    = regexp.MustCompile(`(?i)SUBTOTAL NO OBJETO DE IVA\s*[:$]?\s*(\d+\.\d{2})`)
	reSubtotalExentoIVA      = regexp.MustCompile(`(?i)SUBTOTAL EXENTO DE IVA\s*[:$]?\s*(\d+\.\d{2})`)
	reSubtotalSinImpuestos   = regexp.MustCompile(`(?i)SUBTOTAL SIN IMPUESTOS\s*[:$]?\s*(\d+\.\d{2})`)
	reTotalDescuento         = regexp.MustCompile(`(?i)(?:TOTAL\s*DESCUENTO|froralbescuento)[^\d]*(\d+\.\d{2})`)
	reICE                    = regexp.MustCompile(`(?i)ICE\s*[:$]?\s*(\d+\.\d{2})`)
	reIVATarifaEspecial      = regexp.MustCompile(`(?i)IVA TARIFA ESPECIAL\s*[:$]?\s*(\d+\.\d{2})`)
	reIRBPNR                 = regexp.MustCompile(`(?i)IRBPNR\s*[:$]?\s*(\d+\.\d{2})`)
	rePropina                = regexp.MustCompile(`(?i)(?:PROPINA|propma)[^\d]*(\d+\.\d{2})`)
	reValorTotal             = regexp.MustCompile(`(?i)VALOR TOTAL\s*[:$]?\s*(\d+\.\d{2})`)
	reValorTotalSinSubsidio  = regexp.MustCompile(`(?i)VALOR TOTAL SIN SUBSIDIO\s*[:$]?\s*(\d+\.\d{2})`)
	reAhorroSubsidio         = regexp.MustCompile(`(?i)AHORRO POR SUBSIDIO\s*[:$]?\s*(\d+\.\d{2})`)
)

// pagoMarker identifies the cash payment line printed by this template.
const pagoMarker = "SIN UTILIZACION DEL SISTEMA FINANCIERO"

// Totals extracts the totals block. Every field degrades to 0.00 when its
// label is absent or the amount cannot be parsed.
func (e *Extractor) Totals(text string) entity.Totales {
	return entity.Totales{
		SubtotalTarifaEspecial: e.total(text, reSubtotalTarifaEspecial, "subtotal_tarifa_especial"),
		SubtotalNoObjetoIVA:    e.total(text, reSubtotalNoObjetoIVA, "subtotal_no_objeto_iva"),
		SubtotalExentoIVA:      e.total(text, reSubtotalExentoIVA, "subtotal_exento_iva"),
		SubtotalSinImpuestos:   e.total(text, reSubtotalSinImpuestos, "subtotal_sin_impuestos"),
		TotalDescuento:         e.total(text, reTotalDescuento, "total_descuento"),
		ICE:                    e.total(text, reICE, "ice"),
		IVATarifaEspecial:      e.total(text, reIVATarifaEspecial, "iva_tarifa_especial"),
		IRBPNR:                 e.total(text, reIRBPNR, "irbpnr"),
		Propina:                e.total(text, rePropina, "propina"),
		ValorTotal:             e.total(text, reValorTotal, "valor_total"),
		ValorTotalSinSubsidio:  e.total(text, reValorTotalSinSubsidio, "valor_total_sin_subsidio"),
		AhorroSubsidio:         e.total(text, reAhorroSubsidio, "ahorro_subsidio"),
	}
}

func (e *Extractor) total(text string, re *regexp.Regexp, field string) decimal.Decimal {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	return e.toDecimal(m[1], field)
}

// toDecimal parses an amount, logging and degrading to zero on failure so a
// single mangled number never aborts the document.
func (e *Extractor) toDecimal(raw, field string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		e.log.Warn("valor invalido, se asigna 0.00", "campo", field, "valor", raw)
		return decimal.Zero
	}
	return d
}

// PaymentMethods reports the single cash payment entry when the template's
// cash marker is present; otherwise the invoice carries no payment rows.
func (e *Extractor) PaymentMethods(text string, valorTotal decimal.Decimal) []entity.FormaPago {
	if !strings.Contains(strings.ToUpper(text), pagoMarker) {
		return nil
	}
	return []entity.FormaPago{{
		CodigoPago:      "01",
		DescripcionPago: "Efectivo",
		Valor:           valorTotal,
	}}
}
