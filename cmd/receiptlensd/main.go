package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"receiptlens/constants"
	"receiptlens/internal/async"
	"receiptlens/internal/common"
	"receiptlens/internal/export"
	"receiptlens/internal/extract"
	"receiptlens/internal/geo"
	"receiptlens/internal/ingest"
	"receiptlens/internal/ner"
	"receiptlens/internal/ocr"
	"receiptlens/internal/pipeline"
	"receiptlens/internal/receipts"
	"receiptlens/internal/repository"
	"receiptlens/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open record store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.Error("close record store", "error", cerr)
		}
	}()

	proc := buildPipeline(cfg, logger)
	store := receipts.NewService(repo, logger)
	exp := export.NewService(repo, logger)
	srv := server.NewServer(proc, store, exp, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}
	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	var queue async.Queue
	if cfg.Ingest.InboxDir != "" {
		queue = async.NewProcessorQueue(proc, store, logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
		)
		paths, werr := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Ingest.InboxDir,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
			Logger:      logger,
		})
		if werr != nil {
			logger.Error("start inbox watcher", "error", werr)
			os.Exit(1)
		}
		go func() {
			for path := range paths {
				_ = queue.Enqueue(ctx, async.Job{
					Path:        path,
					UserID:      "inbox",
					SubmittedAt: time.Now().UTC(),
				})
			}
		}()
		logger.Info("inbox watcher started", "dir", cfg.Ingest.InboxDir, "workers", cfg.Ingest.Workers)
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	logger.Info("stopped")
}

// buildPipeline wires the OCR engines, entity recognizers, and lookup
// clients into one processor. Model state is constructed once here and
// shared read-only across requests.
func buildPipeline(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	var primary ocr.Engine
	if cfg.OCR.ModelURL != "" {
		primary = ocr.NewModelEngine(cfg.OCR.ModelURL, cfg.OCR.ModelToken, cfg.OCR.ModelTimeout, logger)
	}
	fallback := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Binary:      cfg.OCR.Tesseract,
		Lang:        cfg.OCR.TesseractLang,
		TessdataDir: cfg.OCR.TessdataDir,
		Preprocess:  true,
	}, logger)
	recognizer := ocr.NewRecognizer(primary, fallback, cfg.OCR.MinTextLen, logger)

	var recognizers []ner.Recognizer
	if cfg.NER.PrimaryURL != "" {
		recognizers = append(recognizers, ner.NewClient(string(constants.CitySourceNERPrimary), cfg.NER.PrimaryURL, cfg.NER.Token, cfg.NER.Timeout, logger))
	}
	if cfg.NER.SecondaryURL != "" {
		recognizers = append(recognizers, ner.NewClient(string(constants.CitySourceNERSecondary), cfg.NER.SecondaryURL, cfg.NER.Token, cfg.NER.Timeout, logger))
	}

	var postal extract.PostalLookup
	if cfg.Geo.PostalBaseURL != "" {
		postal = geo.NewPostalClient(cfg.Geo.PostalBaseURL, cfg.Geo.Timeout, logger)
	}
	var places extract.PlaceLookup
	if cfg.Geo.PlaceBaseURL != "" {
		places = geo.NewPlaceClient(cfg.Geo.PlaceBaseURL, cfg.Geo.Timeout, logger)
	}

	resolver := extract.NewCityResolver(postal, recognizers, places, logger)
	return pipeline.NewProcessor(recognizer, resolver, logger)
}
