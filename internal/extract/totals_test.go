package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsAllAbsentDefaultToZero(t *testing.T) {
	e := NewExtractor(nil)
	tot := e.Totals("texto sin totales")

	for name, v := range map[string]decimal.Decimal{
		"subtotal_tarifa_especial": tot.SubtotalTarifaEspecial,
		"subtotal_no_objeto_iva":   tot.SubtotalNoObjetoIVA,
		"subtotal_exento_iva":      tot.SubtotalExentoIVA,
		"subtotal_sin_impuestos":   tot.SubtotalSinImpuestos,
		"total_descuento":          tot.TotalDescuento,
		"ice":                      tot.ICE,
		"iva_tarifa_especial":      tot.IVATarifaEspecial,
		"irbpnr":                   tot.IRBPNR,
		"propina":                  tot.Propina,
		"valor_total":              tot.ValorTotal,
		"valor_total_sin_subsidio": tot.ValorTotalSinSubsidio,
		"ahorro_subsidio":          tot.AhorroSubsidio,
	} {
		assert.True(t, v.Equal(decimal.Zero), "%s should be zero", name)
	}
}

func TestTotalsValorTotal(t *testing.T) {
	e := NewExtractor(nil)
	tot := e.Totals("VALOR TOTAL: 45.67")
	assert.True(t, tot.ValorTotal.Equal(decimal.RequireFromString("45.67")))
	// nothing else picked up
	assert.True(t, tot.SubtotalSinImpuestos.Equal(decimal.Zero))
}

func TestTotalsFullBlock(t *testing.T) {
	text := `SUBTOTAL TARIFA ESPECIAL: 1.00
SUBTOTAL NO OBJETO DE IVA: 2.00
SUBTOTAL EXENTO DE IVA: 3.00
SUBTOTAL SIN IMPUESTOS: 40.00
TOTAL DESCUENTO: 0.50
ICE: 0.10
IVA TARIFA ESPECIAL: 0.20
IRBPNR: 0.02
PROPINA: 1.50
VALOR TOTAL: 45.67
VALOR TOTAL SIN SUBSIDIO: 46.00
AHORRO POR SUBSIDIO: 0.33`

	e := NewExtractor(nil)
	tot := e.Totals(text)
	assert.True(t, tot.SubtotalTarifaEspecial.Equal(decimal.RequireFromString("1.00")))
	assert.True(t, tot.SubtotalNoObjetoIVA.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, tot.SubtotalExentoIVA.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, tot.SubtotalSinImpuestos.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, tot.TotalDescuento.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, tot.ICE.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, tot.IVATarifaEspecial.Equal(decimal.RequireFromString("0.20")))
	assert.True(t, tot.IRBPNR.Equal(decimal.RequireFromString("0.02")))
	assert.True(t, tot.Propina.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, tot.ValorTotal.Equal(decimal.RequireFromString("45.67")))
	assert.True(t, tot.ValorTotalSinSubsidio.Equal(decimal.RequireFromString("46.00")))
	assert.True(t, tot.AhorroSubsidio.Equal(decimal.RequireFromString("0.33")))
}

func TestTotalsGarbledLabelsStillYieldValues(t *testing.T) {
	e := NewExtractor(nil)
	tot := e.Totals("froralbescuento 2.25\npropma $ 1.75")
	assert.True(t, tot.TotalDescuento.Equal(decimal.RequireFromString("2.25")))
	assert.True(t, tot.Propina.Equal(decimal.RequireFromString("1.75")))
}

func TestPaymentMethodsRequireCashMarker(t *testing.T) {
	e := NewExtractor(nil)
	total := decimal.RequireFromString("10.00")

	assert.Empty(t, e.PaymentMethods("VALOR TOTAL: 10.00", total))

	fp := e.PaymentMethods("OTROS SIN UTILIZACION DEL SISTEMA FINANCIERO 10.00", total)
	require.Len(t, fp, 1)
	assert.Equal(t, "01", fp[0].CodigoPago)
	assert.Equal(t, "Efectivo", fp[0].DescripcionPago)
	assert.True(t, fp[0].Valor.Equal(total))
}

func TestPaymentMethodsMarkerCaseInsensitive(t *testing.T) {
	e := NewExtractor(nil)
	fp := e.PaymentMethods("otros sin utilizacion del sistema financiero", decimal.Zero)
	require.Len(t, fp, 1)
}
