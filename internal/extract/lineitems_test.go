package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemsSingleRow(t *testing.T) {
	e := NewExtractor(nil)
	items := e.LineItems("123 001.00 PAN INTEGRAL 0.4500 0.00 0.45 0.00 0.45")

	require.Len(t, items, 1)
	d := items[0]
	assert.Equal(t, "123", d.CodigoPrincipal)
	assert.Equal(t, "001.00", d.CodigoAuxiliar)
	assert.Equal(t, "1", d.Cantidad)
	assert.Equal(t, "PAN INTEGRAL", d.Descripcion)
	assert.True(t, d.PrecioUnitario.Equal(decimal.RequireFromString("0.4500")))
	assert.True(t, d.Subsidio.Equal(decimal.Zero))
	assert.True(t, d.PrecioSinSubsidio.Equal(decimal.RequireFromString("0.45")))
	assert.True(t, d.Descuento.Equal(decimal.Zero))
	assert.True(t, d.PrecioTotal.Equal(decimal.RequireFromString("0.45")))
}

func TestLineItemsKeepDocumentOrder(t *testing.T) {
	text := `101 001.00 LECHE ENTERA 1.1000 0.00 1.10 0.00 1.10
202 002.00 QUESO FRESCO 2.5000 0.00 2.50 0.00 2.50
303 003.00 PAN 0.3000 0.00 0.30 0.00 0.30`

	e := NewExtractor(nil)
	items := e.LineItems(text)

	require.Len(t, items, 3)
	assert.Equal(t, "LECHE ENTERA", items[0].Descripcion)
	assert.Equal(t, "QUESO FRESCO", items[1].Descripcion)
	assert.Equal(t, "PAN", items[2].Descripcion)
	assert.Equal(t, "101", items[0].CodigoPrincipal)
	assert.Equal(t, "303", items[2].CodigoPrincipal)
}

func TestLineItemsNoMatches(t *testing.T) {
	e := NewExtractor(nil)
	assert.Empty(t, e.LineItems("FACTURA sin detalles reconocibles"))
	assert.Empty(t, e.LineItems(""))
}

func TestLineItemsLowercaseDescriptionRejected(t *testing.T) {
	// descriptions are printed upper case; a lowercase run is not a row
	e := NewExtractor(nil)
	assert.Empty(t, e.LineItems("123 001.00 pan integral 0.4500 0.00 0.45 0.00 0.45"))
}
