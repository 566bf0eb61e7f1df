package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/canvastutor/tutor-service/api"
	"github.com/canvastutor/tutor-service/internal/ai"
	"github.com/canvastutor/tutor-service/internal/db"
	"github.com/canvastutor/tutor-service/internal/logging"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/ocr"
	"github.com/canvastutor/tutor-service/internal/personality"
	"github.com/canvastutor/tutor-service/internal/storage"
	"github.com/canvastutor/tutor-service/internal/tutor"
	"github.com/canvastutor/tutor-service/internal/voice"
)

// CLI flags
var (
	configFlag string
	langFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "tutor-service",
	Short: "AI tutoring backend for canvas analysis, chat and voice",
	Long: `Tutor Service analyzes handwritten canvas snapshots, answers in one of
several tutor personalities and optionally speaks the reply.

Examples:
  tutor-service
  tutor-service serve --config config.yaml
  tutor-service extract homework.png`,
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Run local OCR on an image and print the cleaned text",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "Path to the YAML config file")
	extractCmd.Flags().StringVar(&langFlag, "lang", "", "Tesseract language (defaults to config ocr.language)")

	rootCmd.AddCommand(serveCmd, extractCmd)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
	logging.Init()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	config, err := loadConfig(configFlag)
	if err != nil {
		return err
	}

	// Database journal is optional
	if err := db.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("database not available, analyses will not be journaled")
	} else {
		defer db.Close()
	}

	// Object storage is optional; images are inlined as data URLs without it
	var host ai.ImageHost = storage.InlineHost{}
	if minioHost, err := storage.NewMinIOHostFromEnv(ctx); err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			log.Warn().Err(err).Msg("MinIO storage not available, using inline image URLs")
		}
	} else {
		host = minioHost
	}

	provs, err := createProviders(ctx, config.AI)
	if err != nil {
		return err
	}
	defer provs.close()

	vision := ai.NewVisionAnalyzer(host, provs.vision)
	synth := voice.NewSynthesizer(config.Voice)
	extractor := ocr.NewExtractor(ocr.NewPreprocessor(), ocr.NewTesseractEngine(config.OCR.Language))

	opts := []tutor.Option{}
	if vision.Configured() {
		opts = append(opts, tutor.WithVision(vision))
	}
	if config.OCR.UseFallback() && extractor.Available() {
		opts = append(opts, tutor.WithOCRFallback(extractor))
	}
	if synth.Configured() {
		opts = append(opts, tutor.WithVoice(synth))
	}
	orchestrator := tutor.New(personality.Default(), ai.NewResponseGenerator(provs.chat), opts...)

	handler := api.NewHandler(config, orchestrator,
		api.WithOCR(extractor),
		api.WithJournal(db.Journal{}),
		api.WithCapabilities(api.Capabilities{
			ChatProvider: provs.chatName(),
			Vision:       vision.Configured(),
			Voice:        synth.Configured(),
			ImageHost:    host.Name(),
		}),
	)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logging.NewStartupSummary("tutor-service").
		Config("addr", addr).
		Config("chatProvider", provs.chatName()).
		Config("imageHost", host.Name()).
		Config("ocrLanguage", config.OCR.Language).
		Feature("vision", vision.Configured()).
		Feature("ocrFallback", config.OCR.UseFallback() && extractor.Available()).
		Feature("voice", synth.Configured()).
		Feature("journal", db.Pool != nil).
		Log()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// extractOutput is the JSON printed by the extract command
type extractOutput struct {
	models.OCRResult
	ContentType models.ContentType `json:"contentType"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(configFlag)
	if err != nil {
		return err
	}

	lang := langFlag
	if lang == "" {
		lang = config.OCR.Language
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	extractor := ocr.NewExtractor(ocr.NewPreprocessor(), ocr.NewTesseractEngine(lang))
	if !extractor.Available() {
		log.Warn().Msg("tesseract not compiled in, rebuild with -tags ocr")
	}

	result := extractor.ExtractImage(cmd.Context(), data)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(extractOutput{
		OCRResult:   result,
		ContentType: ocr.Classify(result.Text),
	})
}
