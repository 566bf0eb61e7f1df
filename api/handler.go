package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/db"
	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/tutor"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	MaxJSONSize   = 1 * 1024 * 1024  // 1MB

	// Room for form fields and part headers around a full-size image
	multipartOverhead = 1 * 1024 * 1024
	Version       = "1.0.0"
)

// OCRService is the standalone text extraction capability
type OCRService interface {
	ExtractImage(ctx context.Context, raw []byte) models.OCRResult
	Available() bool
}

// Journal persists completed canvas analyses
type Journal interface {
	Enabled() bool
	Save(ctx context.Context, a *db.Analysis) error
	Recent(ctx context.Context, limit int) ([]db.Analysis, error)
}

// Capabilities describes which upstream services were configured at boot
type Capabilities struct {
	ChatProvider string
	Vision       bool
	Voice        bool
	ImageHost    string
}

// Handler handles HTTP requests for the tutoring service
type Handler struct {
	config  *models.Config
	tutor   *tutor.Orchestrator
	ocr     OCRService
	journal Journal
	caps    Capabilities
}

// Option customizes the handler
type Option func(*Handler)

// WithOCR exposes the standalone OCR endpoint
func WithOCR(ocr OCRService) Option {
	return func(h *Handler) {
		h.ocr = ocr
	}
}

// WithJournal enables analysis journaling
func WithJournal(j Journal) Option {
	return func(h *Handler) {
		h.journal = j
	}
}

// WithCapabilities reports configured services on /health
func WithCapabilities(c Capabilities) Option {
	return func(h *Handler) {
		h.caps = c
	}
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, orchestrator *tutor.Orchestrator, opts ...Option) *Handler {
	h := &Handler{
		config: config,
		tutor:  orchestrator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(recoverer, requestLogger)

	// Tutoring
	router.HandleFunc("/api/analyze-canvas", h.AnalyzeCanvas).Methods("POST")
	router.HandleFunc("/api/chat", h.Chat).Methods("POST")
	router.HandleFunc("/api/voice", h.Voice).Methods("POST")

	// Standalone text extraction
	router.HandleFunc("/api/ocr", h.ExtractText).Methods("POST")

	// Catalog and history
	router.HandleFunc("/api/personalities", h.Personalities).Methods("GET")
	router.HandleFunc("/api/analyses", h.GetAnalyses).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp string                   `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Memory    MemoryStats              `json:"memory"`
	Services  map[string]ServiceStatus `json:"services"`
	AI        map[string]string        `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health reports liveness plus which optional services are wired. Missing
// services degrade features but never fail the check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "OK",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Services: map[string]ServiceStatus{
			"chat":     h.checkChat(),
			"vision":   checkFlag(h.caps.Vision, "", "vision model not configured"),
			"voice":    checkFlag(h.caps.Voice, "", "voice synthesis not configured"),
			"ocr":      h.checkOCR(),
			"storage":  checkFlag(h.caps.ImageHost != "", h.caps.ImageHost, "no image host"),
			"database": h.checkDatabase(r.Context()),
		},
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
			"ocrLanguage":     h.config.OCR.Language,
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) checkChat() ServiceStatus {
	if h.caps.ChatProvider == "" {
		return ServiceStatus{Available: false, Error: "chat model not configured, using fallback replies"}
	}
	return ServiceStatus{Available: true, Version: h.caps.ChatProvider}
}

func (h *Handler) checkOCR() ServiceStatus {
	if h.ocr == nil || !h.ocr.Available() {
		return ServiceStatus{Available: false, Error: "tesseract not compiled in (build with -tags ocr)"}
	}
	return ServiceStatus{Available: true, Version: "tesseract"}
}

func (h *Handler) checkDatabase(ctx context.Context) ServiceStatus {
	if h.journal == nil || !h.journal.Enabled() {
		return ServiceStatus{Available: false, Error: "database pool not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		return ServiceStatus{Available: false, Error: err.Error()}
	}
	return ServiceStatus{Available: true, Version: "PostgreSQL"}
}

func checkFlag(ok bool, version, missing string) ServiceStatus {
	if !ok {
		return ServiceStatus{Available: false, Error: missing}
	}
	return ServiceStatus{Available: true, Version: version}
}

// PersonalityInfo is one entry of the personality listing
type PersonalityInfo struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
}

// Personalities lists the available tutor personas
func (h *Handler) Personalities(w http.ResponseWriter, r *http.Request) {
	list := h.tutor.Personalities().List()
	out := make([]PersonalityInfo, 0, len(list))
	for _, p := range list {
		out = append(out, PersonalityInfo{
			Key:          p.Key,
			Name:         p.Name,
			SystemPrompt: p.SystemPrompt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// sendTutorError maps pipeline errors to status codes. Unknown errors are 500.
func (h *Handler) sendTutorError(w http.ResponseWriter, err error) {
	var te *tutorerr.TutorError
	if !errors.As(err, &te) {
		log.Error().Err(err).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal error",
			Details: err.Error(),
		})
		return
	}

	status := te.HTTPStatus()
	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Fields(te.ToMap()).Int("status", status).Msg("request failed")

	resp := ErrorResponse{
		Error:   te.Message,
		Code:    string(te.Code),
		Details: te.Detail(),
	}
	if reasons, ok := te.Details["reasons"].([]string); ok {
		resp.Reasons = reasons
	}
	writeJSON(w, status, resp)
}
