package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
	"github.com/terra-clan/swim-timer/internal/race"
	"github.com/terra-clan/swim-timer/internal/results"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondRaceError maps engine errors to HTTP responses
func respondRaceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, race.ErrUnknownParticipant):
		respondError(w, http.StatusNotFound, "unknown_participant", err.Error())
	case errors.Is(err, race.ErrUnknownCategory):
		respondError(w, http.StatusNotFound, "not_found", "race category not found")
	case errors.Is(err, race.ErrRaceNotRunning):
		respondError(w, http.StatusConflict, "race_not_running", err.Error())
	case errors.Is(err, race.ErrNotRunning):
		respondError(w, http.StatusConflict, "not_running", err.Error())
	case errors.Is(err, race.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.registry != nil {
		for name, err := range s.registry.HealthCheckAll(r.Context()) {
			if err != nil {
				slog.Warn("sink not ready", "sink", name, "error", err)
				respondError(w, http.StatusServiceUnavailable, "not_ready", fmt.Sprintf("sink %s not ready", name))
				return
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Results handlers

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := results.WriteCSV(&buf, s.engine.Snapshot()); err != nil {
		slog.Error("failed to export csv", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to export results")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=swim_results_by_age_category.csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := results.WriteWorkbook(&buf, s.engine.Snapshot()); err != nil {
		slog.Error("failed to export workbook", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to export results")
		return
	}

	w.Header().Set("Content-Type", results.WorkbookContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=swim_results.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Roster handlers

func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	catalog := s.engine.Catalog()
	participants := catalog.Participants()
	if participants == nil {
		participants = []models.Participant{}
	}

	respondJSON(w, http.StatusOK, models.RosterResponse{
		RaceCategory: catalog.Category(),
		Participants: participants,
		Total:        len(participants),
	})
}

func (s *Server) handleListRaceCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.engine.Roster().RaceCategories()
	if categories == nil {
		categories = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"selected":   s.engine.Catalog().Category(),
		"total":      len(categories),
	})
}

func (s *Server) handleSelectRaceCategory(w http.ResponseWriter, r *http.Request) {
	var req models.SelectCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.engine.SelectCategory(req.RaceCategory); err != nil {
		respondRaceError(w, err, "select race category")
		return
	}

	respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleGetBrackets(w http.ResponseWriter, r *http.Request) {
	table := s.engine.Roster().Brackets()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"brackets": table.Brackets(),
		"fallback": table.Fallback(),
	})
}
