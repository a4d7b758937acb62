// facturad is the invoice extraction service: it accepts PDF uploads,
// recovers the invoice fields, records an audit trail, and forwards the
// assembled payload to the registration service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/jpcarrion/factura-ocr/internal/common"
	"github.com/jpcarrion/factura-ocr/internal/export"
	"github.com/jpcarrion/factura-ocr/internal/extract"
	"github.com/jpcarrion/factura-ocr/internal/ocr"
	"github.com/jpcarrion/factura-ocr/internal/payload"
	"github.com/jpcarrion/factura-ocr/internal/pipeline"
	"github.com/jpcarrion/factura-ocr/internal/registro"
	"github.com/jpcarrion/factura-ocr/internal/repository"
	"github.com/jpcarrion/factura-ocr/internal/server"
)

func main() {
	// Missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	jobs := repository.NewExtractionRepository(db, logger)

	acquirer := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		PSM:           cfg.OCR.PSM,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	registroClient := registro.NewClient(registro.Config{
		AuthURL:     cfg.Registro.AuthURL,
		RegistroURL: cfg.Registro.RegistroURL,
		Usuario:     cfg.Registro.Usuario,
		Clave:       cfg.Registro.Clave,
		Timeout:     cfg.Registro.Timeout,
		TokenTTL:    cfg.Registro.TokenTTL,
	}, logger)

	proc := pipeline.NewProcessor(
		acquirer,
		extract.NewExtractor(logger),
		payload.NewAssembler(logger),
		jobs,
		registroClient,
		logger,
	)

	mux := server.NewMux(
		server.NewFacturaHandler(proc, cfg.Server.MaxUploadBytes, logger),
		server.NewRegistroHandler(registroClient, logger),
		server.NewExportHandler(export.NewService(jobs, logger), logger),
	)

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)
	handler := server.RequestLog(logger)(server.RateLimit(limiter, logger)(mux))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
