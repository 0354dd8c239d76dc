package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type pollService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.ResponseRepository
	now          func() time.Time
}

func NewPollService(pollRepo ports.PollRepository, responseRepo ports.ResponseRepository) ports.PollService {
	return &pollService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
		now:          time.Now,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}

	now := s.now()
	poll := &domain.Poll{
		ID:             uuid.New(),
		Title:          input.Title,
		Description:    input.Description,
		IsActive:       true,
		AllowAnonymous: true,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		Settings:       input.Settings,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.IsActive != nil {
		poll.IsActive = *input.IsActive
	}
	if input.AllowAnonymous != nil {
		poll.AllowAnonymous = *input.AllowAnonymous
	}

	poll.Questions = buildQuestions(poll.ID, input.Questions)

	if err := s.pollRepo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) Update(ctx context.Context, id uuid.UUID, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		poll.Title = *input.Title
	}
	if input.Description != nil {
		poll.Description = *input.Description
	}
	if input.IsActive != nil {
		poll.IsActive = *input.IsActive
	}
	if input.AllowAnonymous != nil {
		poll.AllowAnonymous = *input.AllowAnonymous
	}
	if input.StartsAt != nil {
		poll.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		poll.EndsAt = input.EndsAt
	}
	if input.Settings != nil {
		poll.Settings = input.Settings
	}

	// Questions are only replaceable while nobody has voted; stored answers
	// reference them.
	replaceQuestions := false
	if input.Questions != nil {
		count, err := s.responseRepo.CountByPoll(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}
		if count == 0 {
			poll.Questions = buildQuestions(poll.ID, input.Questions)
			replaceQuestions = true
		}
	}

	poll.UpdatedAt = s.now()

	if err := s.pollRepo.Update(ctx, poll, replaceQuestions); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.pollRepo.Delete(ctx, id)
}

func (s *pollService) GetPoll(ctx context.Context, id uuid.UUID, userID *uuid.UUID, anonymousToken string) (*ports.PollDetail, error) {
	poll, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.PollDetail{Poll: poll}

	identity, err := domain.ResolveVoterIdentity(userID, anonymousToken, true)
	if err != nil {
		// No usable identity; hasVoted stays false.
		return detail, nil
	}

	hasVoted, err := s.responseRepo.ExistsForIdentity(ctx, id, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	detail.HasVoted = hasVoted

	return detail, nil
}

func (s *pollService) ListActive(ctx context.Context) ([]*domain.Poll, error) {
	polls, err := s.pollRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	open := make([]*domain.Poll, 0, len(polls))
	for _, poll := range polls {
		if poll.OpenForVoting(now) == nil {
			open = append(open, poll)
		}
	}
	return open, nil
}

func (s *pollService) List(ctx context.Context, filter ports.PollFilter) ([]*domain.Poll, error) {
	return s.pollRepo.List(ctx, filter)
}

func buildQuestions(pollID uuid.UUID, inputs []ports.CreateQuestionInput) []domain.Question {
	questions := make([]domain.Question, 0, len(inputs))
	for i, qin := range inputs {
		question := domain.Question{
			ID:         uuid.New(),
			PollID:     pollID,
			Type:       qin.Type,
			Title:      qin.Title,
			IsRequired: true,
			SortOrder:  i,
		}
		if qin.IsRequired != nil {
			question.IsRequired = *qin.IsRequired
		}
		if qin.AllowMultiple != nil {
			question.AllowMultiple = *qin.AllowMultiple
		}
		if qin.SortOrder != nil {
			question.SortOrder = *qin.SortOrder
		}

		for j, oin := range qin.Options {
			option := domain.Option{
				ID:           uuid.New(),
				QuestionID:   question.ID,
				Type:         oin.Type,
				TextContent:  oin.TextContent,
				ImageURL:     oin.ImageURL,
				NumericValue: oin.NumericValue,
				SortOrder:    j,
				Weight:       oin.Weight,
			}
			if oin.SortOrder != nil {
				option.SortOrder = *oin.SortOrder
			}
			question.Options = append(question.Options, option)
		}

		questions = append(questions, question)
	}
	return questions
}
