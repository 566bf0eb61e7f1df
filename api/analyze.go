package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/db"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/tutor"
)

const journalTimeout = 5 * time.Second

var errImageTooLarge = errors.New("image exceeds upload limit")

// AnalyzeCanvas handles a canvas snapshot plus optional text context
func (h *Handler) AnalyzeCanvas(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	image, mimeType, err := readImage(r)
	if errors.Is(err, errImageTooLarge) {
		h.sendError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10MB limit")
		return
	}
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}

	req := tutor.CanvasRequest{
		Image:         image,
		MIMEType:      mimeType,
		Personality:   r.FormValue("personality"),
		Description:   r.FormValue("description"),
		ExtractedText: r.FormValue("extractedText"),
		AnalysisType:  r.FormValue("analysisType"),
		TriggerReason: r.FormValue("triggerReason"),
		IncludeVoice:  formBool(r.FormValue("includeVoice")),
	}

	resp, err := h.tutor.Analyze(r.Context(), req)
	if err != nil {
		h.sendTutorError(w, err)
		return
	}

	h.journalAnalysis(resp, req.TriggerReason)
	writeJSON(w, http.StatusOK, resp)
}

// journalAnalysis records the analysis without delaying the response
func (h *Handler) journalAnalysis(resp *models.CanvasAnalysisResponse, triggerReason string) {
	if h.journal == nil || !h.journal.Enabled() {
		return
	}

	row := db.AnalysisFromResponse(resp, triggerReason)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		if err := h.journal.Save(ctx, row); err != nil {
			log.Warn().Err(err).Str("id", row.ID.String()).Msg("failed to journal analysis")
		}
	}()
}

// readImage returns the uploaded "image" or "file" part, or nil when the
// request carries none.
func readImage(r *http.Request) ([]byte, string, error) {
	if r.MultipartForm == nil {
		return nil, "", nil
	}

	for _, field := range []string{"image", "file"} {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}

		if headers[0].Size > MaxUploadSize {
			return nil, "", errImageTooLarge
		}

		file, err := headers[0].Open()
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}

		contentType := headers[0].Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		return data, contentType, nil
	}
	return nil, "", nil
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
