package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/swim-timer/internal/models"
)

// --- Race control handlers ---

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStartRace(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.Start(); err != nil {
		respondRaceError(w, err, "start race")
		return
	}

	respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStopRace(w http.ResponseWriter, r *http.Request) {
	stopped, err := s.engine.Stop()
	if err != nil {
		respondRaceError(w, err, "stop race")
		return
	}

	respondJSON(w, http.StatusOK, models.StopResponse{
		State:          s.engine.State(),
		AlreadyStopped: !stopped,
	})
}

func (s *Server) handleResetRace(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset()
	respondJSON(w, http.StatusOK, s.engine.Status())
}

// --- Finish handlers ---

func (s *Server) handleListFinishes(w http.ResponseWriter, r *http.Request) {
	finishes := []models.FinishRecord{}
	for rec := range s.engine.All() {
		finishes = append(finishes, rec)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"finishes": finishes,
		"total":    len(finishes),
	})
}

func (s *Server) handleHasFinished(w http.ResponseWriter, r *http.Request) {
	id, ok := participantIDParam(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"participant_id": id,
		"finished":       s.engine.Has(id),
	})
}

func (s *Server) handleRecordFinish(w http.ResponseWriter, r *http.Request) {
	id, ok := participantIDParam(w, r)
	if !ok {
		return
	}

	rec, created, err := s.engine.Record(id, ObserverFromContext(r.Context()))
	if err != nil {
		respondRaceError(w, err, "record finish")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	respondJSON(w, status, models.FinishResponse{
		Record:  rec,
		Created: created,
	})
}

func participantIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "participant id must be a positive integer")
		return 0, false
	}
	return id, true
}
