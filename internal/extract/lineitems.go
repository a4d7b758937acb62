package extract

import (
	"regexp"
	"strings"

	"github.com/jpcarrion/factura-ocr/internal/entity"
)

// Detail rows in this template are a fixed 8-column run on a single line.
// Case sensitive on purpose: descriptions are printed in upper case and a
// case-insensitive match would swallow surrounding prose.
var reDetalle = regexp.MustCompile(
	`(\d+)\s+` + // codigo principal
		`(\d+\.\d{2})\s+` + // codigo auxiliar
		`([A-ZÑ\s]+?)\s+` + // descripcion
		`(\d+\.\d{4})\s+` + // precio unitario
		`(\d+\.\d{2})\s+` + // subsidio
		`(\d+\.\d{2})\s+` + // precio sin subsidio
		`(\d+\.\d{2})\s+` + // descuento
		`(\d+\.\d{2})`, // precio total
)

// LineItems collects every detail row in document order. The printed layout
// has no quantity column; each row is a unit sale, so cantidad is fixed at 1.
func (e *Extractor) LineItems(text string) []entity.Detalle {
	var out []entity.Detalle
	for _, m := range reDetalle.FindAllStringSubmatch(text, -1) {
		out = append(out, entity.Detalle{
			CodigoPrincipal:   m[1],
			CodigoAuxiliar:    m[2],
			Cantidad:          "1",
			Descripcion:       strings.TrimSpace(m[3]),
			PrecioUnitario:    e.toDecimal(m[4], "precio_unitario"),
			Subsidio:          e.toDecimal(m[5], "subsidio"),
			PrecioSinSubsidio: e.toDecimal(m[6], "precio_sin_subsidio"),
			Descuento:         e.toDecimal(m[7], "descuento"),
			PrecioTotal:       e.toDecimal(m[8], "precio_total"),
		})
	}
	return out
}
