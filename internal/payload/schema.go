package payload

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RegistroSchema describes the shape the registration service accepts.
// Kept as a map so it can be marshaled for diagnostics.
func RegistroSchema() map[string]any {
	stringField := map[string]any{"type": "string"}
	amount := map[string]any{"type": "number"}

	detalle := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"codigo_principal":    stringField,
			"codigo_auxiliar":     stringField,
			"cantidad":            stringField,
			"descripcion":         stringField,
			"precio_unitario":     amount,
			"subsidio":            amount,
			"precio_sin_subsidio": amount,
			"descuento":           amount,
			"precio_total":        amount,
		},
		"required": []any{"codigo_principal", "descripcion", "precio_total"},
	}

	totales := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subtotal_tarifa_especial": amount,
			"subtotal_no_objeto_iva":   amount,
			"subtotal_exento_iva":      amount,
			"subtotal_sin_impuestos":   amount,
			"total_descuento":          amount,
			"ice":                      amount,
			"iva_tarifa_especial":      amount,
			"irbpnr":                   amount,
			"propina":                  amount,
			"valor_total":              amount,
			"valor_total_sin_subsidio": amount,
			"ahorro_subsidio":          amount,
		},
		"required": []any{"valor_total"},
	}

	formaPago := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"codigo_pago":      stringField,
			"descripcion_pago": stringField,
			"valor":            amount,
		},
		"required": []any{"codigo_pago", "valor"},
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"empresaNombreComercial":       stringField,
			"empresaRazonSocial":           stringField,
			"empresaRuc":                   stringField,
			"empresaContribuyenteEspecial": stringField,
			"empresaObligadoContabilidad":  map[string]any{"type": "boolean"},
			"empresaDireccionMatriz":       stringField,
			"empresaDireccionSucursal":     stringField,
			"clienteNombre":                stringField,
			"clienteIdentificacion":        stringField,
			"clienteCorreo":                stringField,
			"factura":                      stringField,
			"numeroFactura":                stringField,
			"numeroAutorizacion":           stringField,
			"claveAcceso":                  stringField,
			"fechaEmision":                 stringField,
			"horaAutorizacion":             stringField,
			"ambiente":                     stringField,
			"emision":                      stringField,
			"placaMatricula":               stringField,
			"detalles":                     map[string]any{"type": "array", "items": detalle},
			"totales":                      totales,
			"formasPago":                   map[string]any{"type": "array", "items": formaPago},
			"jsonFactura": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"factura": stringField,
					"cliente": stringField,
					"total":   amount,
				},
				"required": []any{"factura", "cliente", "total"},
			},
		},
		"required": []any{"empresaRuc", "factura", "numeroFactura", "detalles", "totales", "formasPago", "jsonFactura"},
	}
}

// registroSchema is compiled once; the schema is static and Validate runs on
// every assembled payload.
var registroSchema = mustCompileRegistroSchema()

func mustCompileRegistroSchema() *jsonschema.Schema {
	raw, err := json.Marshal(RegistroSchema())
	if err != nil {
		panic(fmt.Sprintf("marshal registro schema: %v", err))
	}
	schema, err := jsonschema.CompileString("registro.json", string(raw))
	if err != nil {
		panic(fmt.Sprintf("compile registro schema: %v", err))
	}
	return schema
}

// Validate checks a payload against RegistroSchema.
func Validate(p *Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := registroSchema.Validate(doc); err != nil {
		return fmt.Errorf("payload schema validation: %w", err)
	}
	return nil
}
