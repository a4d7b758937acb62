package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingFieldsFlagsEmptyDetalles(t *testing.T) {
	e := NewExtractor(nil)

	inv := e.Invoice("R.U.C. : 1790016919001")
	assert.Contains(t, missingFields(inv), "detalles")
	assert.NotContains(t, missingFields(inv), "empresaRuc")

	inv = e.Invoice("123 001.00 PAN INTEGRAL 0.4500 0.00 0.45 0.00 0.45")
	assert.NotContains(t, missingFields(inv), "detalles")
}

func TestMissingFieldsEmptyText(t *testing.T) {
	e := NewExtractor(nil)
	missing := missingFields(e.Invoice(""))
	// 15 header fields plus detalles
	assert.Len(t, missing, 16)
	assert.Contains(t, missing, "claveAcceso")
	assert.Contains(t, missing, "detalles")
}
