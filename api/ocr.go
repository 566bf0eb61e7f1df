package api

import (
	"errors"
	"net/http"

	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/ocr"
)

// OCRResponse is the standalone text extraction result
type OCRResponse struct {
	models.OCRResult
	ConfidenceSource string             `json:"confidenceSource"`
	ContentType      models.ContentType `json:"contentType"`
}

// ExtractText runs local OCR on an uploaded image
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	if h.ocr == nil {
		h.sendError(w, http.StatusServiceUnavailable, "OCR not enabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	image, _, err := readImage(r)
	if errors.Is(err, errImageTooLarge) {
		h.sendError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10MB limit")
		return
	}
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}
	if len(image) == 0 {
		h.sendError(w, http.StatusBadRequest, "No file provided (use 'image' or 'file' field)")
		return
	}

	result := h.ocr.ExtractImage(r.Context(), image)
	writeJSON(w, http.StatusOK, OCRResponse{
		OCRResult:        result,
		ConfidenceSource: models.ConfidenceMeasured,
		ContentType:      ocr.Classify(result.Text),
	})
}
