package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/fitcoach/internal/models"
)

// User routes answer errors with {"detail": ...} bodies, which the web
// client already understands.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var nu models.NewUser
	if err := json.NewDecoder(r.Body).Decode(&nu); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if nu.Auth0ID == "" {
		writeDetail(w, http.StatusBadRequest, "auth0_id is required")
		return
	}
	if s.opts.Verifier != nil && subjectFromContext(r) != nu.Auth0ID {
		writeDetail(w, http.StatusForbidden, "token subject does not match auth0_id")
		return
	}

	u, err := s.store.CreateUser(r.Context(), nu)
	if errors.Is(err, models.ErrUserExists) {
		writeDetail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		s.log.Error("create user failed", "auth0_id", nu.Auth0ID, "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("user registered", "auth0_id", u.Auth0ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.writeUser(w, r, pathParam(r, "auth0_id"))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	auth0ID := r.URL.Query().Get("auth0_id")
	if auth0ID == "" {
		writeDetail(w, http.StatusBadRequest, "auth0_id parameter required")
		return
	}
	s.writeUser(w, r, auth0ID)
}

func (s *Server) writeUser(w http.ResponseWriter, r *http.Request, auth0ID string) {
	u, err := s.store.GetUser(r.Context(), auth0ID)
	if isNotFound(err) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	Auth0ID     string          `json:"auth0_id"`
	ProfileJSON json.RawMessage `json:"profile_json"`
}

func (s *Server) handleUpdateFitnessProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Auth0ID == "" || len(req.ProfileJSON) == 0 {
		writeDetail(w, http.StatusBadRequest, "auth0_id and profile_json are required")
		return
	}

	p, err := models.ParseFitnessProfile(req.ProfileJSON)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.store.UpdateFitnessProfile(r.Context(), req.Auth0ID, p)
	if isNotFound(err) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.log.Error("profile update failed", "auth0_id", req.Auth0ID, "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fitness profile updated successfully"})
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	logs, err := s.store.QuerySessionLogs(r.Context(), pathParam(r, "auth0_id"), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
