package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type VoteHandler struct {
	voteService    ports.VoteService
	resultsService ports.ResultsService
}

func NewVoteHandler(voteService ports.VoteService, resultsService ports.ResultsService) *VoteHandler {
	return &VoteHandler{
		voteService:    voteService,
		resultsService: resultsService,
	}
}

type submitVoteRequest struct {
	AnonymousID string              `json:"anonymous_id"`
	Answers     []ports.AnswerInput `json:"answers"`
}

type submitVoteResponse struct {
	ResponseID uuid.UUID `json:"response_id"`
	Message    string    `json:"message"`
}

// SubmitVote handles POST /api/polls/{id}/votes. Authentication is optional:
// the poll's anonymous policy decides whether an anonymous token is enough.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req submitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Answers) == 0 {
		http.Error(w, "at least one answer is required", http.StatusBadRequest)
		return
	}

	input := ports.SubmitVoteInput{
		PollID:         pollID,
		UserID:         UserIDFromContext(r.Context()),
		AnonymousToken: req.AnonymousID,
		ClientIP:       clientIP(r),
		Answers:        req.Answers,
	}

	result, err := h.voteService.Submit(r.Context(), input)
	if err != nil {
		writeVoteError(w, err)
		return
	}

	message := "Vote submitted successfully."
	status := http.StatusCreated
	if result.WasUpdate {
		message = "Your vote has been updated."
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(submitVoteResponse{ResponseID: result.ResponseID, Message: message}); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// GetResults handles GET /api/polls/{id}/results.
func (h *VoteHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	results, err := h.resultsService.Results(r.Context(), pollID)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("failed to aggregate results", "poll_id", pollID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeVoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPollNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrPollNotOpen):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrAuthenticationRequired):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrIdentityRequired),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrUnknownOption):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("vote submission failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
