package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/claude/fitcoach/internal/coach"
)

// maxAudioBytes caps /transcribe/ uploads.
const maxAudioBytes = 25 << 20

type conversationRequest struct {
	Auth0ID string `json:"auth0_id"`
	Message string `json:"message"`
}

func (s *Server) coachError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, coach.ErrNoProvider) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	s.log.Error(op+" failed", "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func (s *Server) handleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Auth0ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "auth0_id is required"})
		return
	}

	reply, err := s.coach.StartOnboarding(r.Context(), req.Auth0ID)
	if err != nil {
		s.coachError(w, "start onboarding", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

func (s *Server) handleAddToConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Auth0ID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "auth0_id and message are required"})
		return
	}

	reply, err := s.coach.AddToConversation(r.Context(), req.Auth0ID, req.Message)
	if err != nil {
		s.coachError(w, "conversation turn", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field \"file\" required: " + err.Error()})
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading upload: " + err.Error()})
		return
	}

	text, err := s.coach.Transcribe(r.Context(), hdr.Filename, audio)
	if err != nil {
		s.coachError(w, "transcription", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transcription": text})
}
