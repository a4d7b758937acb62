// Package registro talks to the external invoice registration service:
// token acquisition against the auth endpoint, then submission of the
// assembled payload.
package registro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/jpcarrion/factura-ocr/internal/common"
	"github.com/jpcarrion/factura-ocr/internal/payload"
)

const tokenCacheKey = "registro_token"

type Config struct {
	AuthURL     string
	RegistroURL string
	Usuario     string
	Clave       string
	Timeout     time.Duration
	TokenTTL    time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	tokens *cache.Cache
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 10 * time.Minute
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: cache.New(cfg.TokenTTL, 2*cfg.TokenTTL),
		log:    logger,
	}
}

// token returns a cached bearer token, authenticating when the cache is
// empty or expired.
func (c *Client) token(ctx context.Context) (string, error) {
	if v, ok := c.tokens.Get(tokenCacheKey); ok {
		return v.(string), nil
	}
	raw, status, err := c.postJSON(ctx, c.cfg.AuthURL, map[string]any{
		"usuario": c.cfg.Usuario,
		"clave":   c.cfg.Clave,
	}, "")
	if err != nil {
		return "", common.NewAppError("TOKEN_ERROR", "fallo al solicitar token", err)
	}
	if status < 200 || status >= 300 {
		return "", common.NewAppError("TOKEN_ERROR", fmt.Sprintf("autenticacion rechazada: HTTP %d", status), nil)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Token == "" {
		return "", common.NewAppError("TOKEN_ERROR", "respuesta de autenticacion sin token", nil)
	}
	c.tokens.Set(tokenCacheKey, body.Token, cache.DefaultExpiration)
	return body.Token, nil
}

// Enviar submits the payload to the registration service. It never returns
// an error: every failure mode is reported as data in the result map so the
// extraction response can carry it through unchanged.
func (c *Client) Enviar(ctx context.Context, p *payload.Payload) map[string]any {
	tok, err := c.token(ctx)
	if err != nil {
		c.log.Error("no se pudo obtener token", "error", err)
		return map[string]any{"error": "No se pudo obtener token"}
	}

	form, err := p.WireForm()
	if err != nil {
		c.log.Error("no se pudo serializar el payload", "error", err)
		return map[string]any{"error": "No se pudo serializar el payload"}
	}

	raw, status, err := c.postJSON(ctx, c.cfg.RegistroURL, form, tok)
	if err != nil {
		c.log.Error("fallo el envio del registro", "error", err)
		return map[string]any{"error": err.Error()}
	}
	if status < 200 || status >= 300 {
		return map[string]any{"error": string(raw)}
	}

	contenido := strings.TrimSpace(string(raw))
	if contenido == "" {
		return map[string]any{"mensaje": "Registro exitoso pero sin respuesta JSON"}
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]any{
			"mensaje":   "Registro exitoso pero la respuesta no es JSON",
			"respuesta": contenido,
		}
	}
	return parsed
}

// postJSON posts a JSON body and returns the raw response, tagging each
// request with an id for log correlation.
func (c *Client) postJSON(ctx context.Context, url string, body any, bearer string) ([]byte, int, error) {
	reqID := uuid.NewString()
	start := time.Now()

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("peticion http fallida", "req_id", reqID, "url", url, "error", err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	c.log.Info("peticion http completada",
		"req_id", reqID,
		"url", url,
		"status", resp.StatusCode,
		"duracion", time.Since(start).String())
	return raw, resp.StatusCode, nil
}
