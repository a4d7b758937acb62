package extract

import (
	"regexp"
	"strings"

	"github.com/jpcarrion/factura-ocr/internal/entity"
)

// Header field patterns for the SRI invoice template family this service
// understands. Label tokens and capture-group positions are the extraction
// contract, including the OCR-garbled spellings the recognizer produces for
// this template ("Razen Social", "Identificacien").
var (
	reNombreComercial       = regexp.MustCompile(`(?i)\|\s*(\w+)`)
	reRazonSocial           = regexp.MustCompile(`(?i)(DELI INTERNACIONAL S\.A\.)`)
	reRuc                   = regexp.MustCompile(`(?i)R\.U\.C\.\s*:\s*(\d{13})`)
	reContribuyenteEspecial = regexp.MustCompile(`(?i)Contribuyente Especial\s*(\d+)`)
	reDireccionMatriz       = regexp.MustCompile(`(?i)Matriz:\s*(.+)`)
	reDireccionSucursal     = regexp.MustCompile(`(?i)Sucursal:\s*(.+)`)
	reClienteNombre         = regexp.MustCompile(`(?i)Razen Social.*?:\s*(.+)`)
	reClienteIdentificacion = regexp.MustCompile(`(?i)Identificacien\s*(\d+)`)
	reClienteCorreo         = regexp.MustCompile(`(?i)CORREO 1:\s*([\w.-]+@[\w.-]+)`)
	reNumeroFactura         = regexp.MustCompile(`(?i)No\.\s*(\d{3}-\d{3}-\d+)`)
	reNumeroAutorizacion    = regexp.MustCompile(`(?i)NUMERO DE AUTORIZACION\s*\n\s*(\d+)`)
	reClaveAcceso           = regexp.MustCompile(`(?i)Sucursal:\s*CLAVE DE ACCESO\s*\n\s*(\d+)`)
	reFechaEmision          = regexp.MustCompile(`(?i)Fecha\s*(\d{2}/\d{2}/\d{4})`)
	reHoraAutorizacion      = regexp.MustCompile(`(?i)AUTORIZACION:\s*(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2})`)
	reAmbiente              = regexp.MustCompile(`(?i)AMBIENTE:\s*(\w+)`)
	reEmision               = regexp.MustCompile(`(?i)EMISION:\s*(\w+)`)
	rePlacaMatricula        = regexp.MustCompile(`(?i)Placa\s*/\s*Matricula:\s*(.+)`)
)

// match returns the first capture group of the first match, trimmed, or nil.
func match(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	return &v
}

// matchOr is match with an extractor-level default for the few fields that
// must never be empty.
func matchOr(re *regexp.Regexp, text, fallback string) string {
	if v := match(re, text); v != nil && *v != "" {
		return *v
	}
	return fallback
}

// HeaderFields applies the full battery of header patterns over the text.
// A field whose pattern does not match stays nil; only ambiente and emision
// default here, everything else is deferred to the payload assembler.
func (e *Extractor) HeaderFields(text string) entity.Header {
	return entity.Header{
		EmpresaNombreComercial:       match(reNombreComercial, text),
		EmpresaRazonSocial:           match(reRazonSocial, text),
		EmpresaRuc:                   match(reRuc, text),
		EmpresaContribuyenteEspecial: match(reContribuyenteEspecial, text),
		EmpresaObligadoContabilidad:  true,
		EmpresaDireccionMatriz:       match(reDireccionMatriz, text),
		EmpresaDireccionSucursal:     match(reDireccionSucursal, text),
		ClienteNombre:                match(reClienteNombre, text),
		ClienteIdentificacion:        match(reClienteIdentificacion, text),
		ClienteCorreo:                match(reClienteCorreo, text),
		NumeroFactura:                match(reNumeroFactura, text),
		NumeroAutorizacion:           match(reNumeroAutorizacion, text),
		ClaveAcceso:                  match(reClaveAcceso, text),
		FechaEmision:                 match(reFechaEmision, text),
		HoraAutorizacion:             match(reHoraAutorizacion, text),
		Ambiente:                     matchOr(reAmbiente, text, entity.AmbienteProduccion),
		Emision:                      matchOr(reEmision, text, entity.EmisionNormal),
		PlacaMatricula:               match(rePlacaMatricula, text),
	}
}
