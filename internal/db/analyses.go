package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/canvastutor/tutor-service/internal/models"
)

const createAnalysesTable = `
	CREATE TABLE IF NOT EXISTS canvas_analyses (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		personality    TEXT NOT NULL,
		analysis_type  TEXT NOT NULL,
		trigger_reason TEXT NOT NULL DEFAULT '',
		extracted_text TEXT NOT NULL DEFAULT '',
		content_type   TEXT NOT NULL DEFAULT '',
		source         TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// Analysis is one journaled canvas analysis. The tutor's reply and the image
// are not stored.
type Analysis struct {
	ID            uuid.UUID `json:"id"`
	Personality   string    `json:"personality"`
	AnalysisType  string    `json:"analysisType"`
	TriggerReason string    `json:"triggerReason"`
	ExtractedText string    `json:"extractedText"`
	ContentType   string    `json:"contentType"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AnalysisFromResponse builds the journal row for a completed analysis
func AnalysisFromResponse(resp *models.CanvasAnalysisResponse, triggerReason string) *Analysis {
	a := &Analysis{
		ID:            uuid.New(),
		Personality:   resp.Personality,
		AnalysisType:  resp.AnalysisType,
		TriggerReason: triggerReason,
		ExtractedText: resp.ExtractedText,
		Source:        "text",
	}
	if resp.OCRResults != nil {
		a.ContentType = string(resp.OCRResults.ContentType)
		if resp.OCRResults.HasContent && resp.OCRResults.Source != "" {
			a.Source = resp.OCRResults.Source
		}
	}
	return a
}

// SaveAnalysis inserts a journal row
func SaveAnalysis(ctx context.Context, a *Analysis) error {
	if Pool == nil {
		return ErrNotConfigured
	}

	query := `
		INSERT INTO canvas_analyses (
			id, personality, analysis_type, trigger_reason,
			extracted_text, content_type, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return Pool.QueryRow(ctx, query,
		a.ID, a.Personality, a.AnalysisType, a.TriggerReason,
		a.ExtractedText, a.ContentType, a.Source,
	).Scan(&a.CreatedAt)
}

// GetRecentAnalyses returns the newest journal rows first
func GetRecentAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	if Pool == nil {
		return nil, ErrNotConfigured
	}

	query := `
		SELECT id, personality, analysis_type, trigger_reason,
		       extracted_text, content_type, source, created_at
		FROM canvas_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		var a Analysis
		err := rows.Scan(
			&a.ID, &a.Personality, &a.AnalysisType, &a.TriggerReason,
			&a.ExtractedText, &a.ContentType, &a.Source, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

// Journal exposes the package-level pool through an interface-friendly value
type Journal struct{}

// Enabled reports whether a database is connected
func (Journal) Enabled() bool {
	return Pool != nil
}

// Save journals an analysis
func (Journal) Save(ctx context.Context, a *Analysis) error {
	return SaveAnalysis(ctx, a)
}

// Recent lists the newest analyses
func (Journal) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	return GetRecentAnalyses(ctx, limit)
}
