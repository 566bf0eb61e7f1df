package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/models"
)

// Chat continues a tutoring conversation. Clients that predate the "mode"
// field and embed Socratic instructions in a user turn keep working: the
// personality prompt is not added on top of theirs.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.tutor.Chat(r.Context(), req)
	if err != nil {
		h.sendTutorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Voice synthesizes text in a personality's voice and streams back MP3
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	var req models.VoiceRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	audio, err := h.tutor.Speak(r.Context(), req)
	if err != nil {
		h.sendTutorError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Warn().Err(err).Msg("failed to write audio")
	}
}
