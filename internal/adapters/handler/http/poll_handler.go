package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createOptionRequest struct {
	Type         domain.OptionType `json:"type"`
	TextContent  string            `json:"text_content"`
	ImageURL     string            `json:"image_url"`
	NumericValue *float64          `json:"numeric_value"`
	SortOrder    *int              `json:"sort_order"`
	Weight       *float64          `json:"weight"`
}

type createQuestionRequest struct {
	Type          domain.QuestionType   `json:"type"`
	Title         string                `json:"title"`
	IsRequired    *bool                 `json:"is_required"`
	AllowMultiple *bool                 `json:"allow_multiple"`
	SortOrder     *int                  `json:"sort_order"`
	Options       []createOptionRequest `json:"options"`
}

type createPollRequest struct {
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	IsActive       *bool                   `json:"is_active"`
	AllowAnonymous *bool                   `json:"allow_anonymous"`
	StartsAt       *time.Time              `json:"starts_at"`
	EndsAt         *time.Time              `json:"ends_at"`
	Settings       map[string]any          `json:"settings"`
	Questions      []createQuestionRequest `json:"questions"`
}

type updatePollRequest struct {
	Title          *string                 `json:"title"`
	Description    *string                 `json:"description"`
	IsActive       *bool                   `json:"is_active"`
	AllowAnonymous *bool                   `json:"allow_anonymous"`
	StartsAt       *time.Time              `json:"starts_at"`
	EndsAt         *time.Time              `json:"ends_at"`
	Settings       map[string]any          `json:"settings"`
	Questions      []createQuestionRequest `json:"questions"`
}

type pollDetailResponse struct {
	*domain.Poll
	HasVoted bool `json:"has_voted"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreatePollInput{
		Title:          req.Title,
		Description:    req.Description,
		IsActive:       req.IsActive,
		AllowAnonymous: req.AllowAnonymous,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Settings:       req.Settings,
		Questions:      toQuestionInputs(req.Questions),
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(poll); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req updatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.UpdatePollInput{
		Title:          req.Title,
		Description:    req.Description,
		IsActive:       req.IsActive,
		AllowAnonymous: req.AllowAnonymous,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Settings:       req.Settings,
	}
	if req.Questions != nil {
		input.Questions = toQuestionInputs(req.Questions)
	}

	poll, err := h.service.Update(r.Context(), pollID, input)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(poll); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), pollID); err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	detail, err := h.service.GetPoll(r.Context(), pollID, UserIDFromContext(r.Context()), r.Header.Get("X-Anonymous-Id"))
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pollDetailResponse{Poll: detail.Poll, HasVoted: detail.HasVoted}); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PollHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListActive(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(polls); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PollHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := ports.PollFilter{
		Search: r.URL.Query().Get("search"),
	}
	if active := r.URL.Query().Get("active"); active != "" {
		value := active == "true"
		filter.Active = &value
	}
	if from := r.URL.Query().Get("start_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.StartFrom = &t
		}
	}
	if by := r.URL.Query().Get("end_by"); by != "" {
		if t, err := time.Parse(time.RFC3339, by); err == nil {
			filter.EndBy = &t
		}
	}

	polls, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(polls); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func toQuestionInputs(reqs []createQuestionRequest) []ports.CreateQuestionInput {
	inputs := make([]ports.CreateQuestionInput, 0, len(reqs))
	for _, q := range reqs {
		input := ports.CreateQuestionInput{
			Type:          q.Type,
			Title:         q.Title,
			IsRequired:    q.IsRequired,
			AllowMultiple: q.AllowMultiple,
			SortOrder:     q.SortOrder,
		}
		for _, o := range q.Options {
			input.Options = append(input.Options, ports.CreateOptionInput{
				Type:         o.Type,
				TextContent:  o.TextContent,
				ImageURL:     o.ImageURL,
				NumericValue: o.NumericValue,
				SortOrder:    o.SortOrder,
				Weight:       o.Weight,
			})
		}
		inputs = append(inputs, input)
	}
	return inputs
}
