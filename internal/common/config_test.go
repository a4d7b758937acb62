package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "facturas.db", cfg.Database.DSN)
	assert.Equal(t, "spa", cfg.OCR.TesseractLang)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 11, cfg.OCR.PSM)
	assert.Equal(t, 30*time.Second, cfg.Registro.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Registro.TokenTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("OCR_DPI", "150")
	t.Setenv("REGISTRO_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := LoadConfig()
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 150, cfg.OCR.DPI)
	assert.Equal(t, 5*time.Second, cfg.Registro.Timeout)
	assert.Equal(t, 2.5, cfg.Server.RatePerSecond)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("OCR_DPI", "not-a-number")
	t.Setenv("REGISTRO_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 30*time.Second, cfg.Registro.Timeout)
}

func TestValidateRequiresRegistroEndpoints(t *testing.T) {
	cfg := LoadConfig()
	err := cfg.Validate()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)

	t.Setenv("AUTH_URL", "http://auth.local/token")
	t.Setenv("REGISTRO_URL", "http://registro.local/facturas")
	cfg = LoadConfig()
	assert.NoError(t, cfg.Validate())
}
