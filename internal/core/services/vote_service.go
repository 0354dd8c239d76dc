package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type voteService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.ResponseRepository
	optionRepo   ports.OptionRepository
	policy       OptionRefPolicy
	now          func() time.Time
	logger       *slog.Logger
}

type VoteServiceOption func(*voteService)

// WithOptionRefPolicy overrides the dangling-option policy; the default
// stores a nil reference instead of failing.
func WithOptionRefPolicy(policy OptionRefPolicy) VoteServiceOption {
	return func(s *voteService) { s.policy = policy }
}

// WithClock replaces the time source, used by tests to pin the activity
// window.
func WithClock(now func() time.Time) VoteServiceOption {
	return func(s *voteService) { s.now = now }
}

func NewVoteService(pollRepo ports.PollRepository, responseRepo ports.ResponseRepository, optionRepo ports.OptionRepository, opts ...VoteServiceOption) ports.VoteService {
	s := &voteService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
		optionRepo:   optionRepo,
		policy:       OptionRefNullify,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates or replaces the voter's response for the poll. Two
// concurrent first-time submissions from the same identity can collide on the
// poll+identity uniqueness constraint; the loser retries the whole procedure
// exactly once and lands on the update path. A second conflict propagates.
func (s *voteService) Submit(ctx context.Context, input ports.SubmitVoteInput) (*ports.SubmitVoteResult, error) {
	result, err := s.submitOnce(ctx, input)
	if errors.Is(err, domain.ErrDuplicateResponse) {
		s.logger.Warn("response creation conflict, retrying submission",
			"poll_id", input.PollID, "client_ip", input.ClientIP)
		result, err = s.submitOnce(ctx, input)
		if errors.Is(err, domain.ErrDuplicateResponse) {
			return nil, fmt.Errorf("persistent conflict saving response: %w", err)
		}
	}
	return result, err
}

func (s *voteService) submitOnce(ctx context.Context, input ports.SubmitVoteInput) (*ports.SubmitVoteResult, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if err := poll.OpenForVoting(s.now()); err != nil {
		return nil, err
	}

	identity, err := domain.ResolveVoterIdentity(input.UserID, input.AnonymousToken, poll.AllowAnonymous)
	if err != nil {
		return nil, err
	}

	existing, err := s.findExisting(ctx, poll, identity)
	if err != nil {
		return nil, err
	}

	var response *domain.Response
	wasUpdate := false
	if existing != nil {
		// Logical replace: same response row, answers rebuilt from scratch.
		response = existing
		response.Answers = nil
		wasUpdate = true
	} else {
		response = &domain.Response{PollID: poll.ID, IPAddress: input.ClientIP}
		if identity.IsAnonymous() {
			token := identity.AnonymousToken
			response.AnonymousID = &token
		} else {
			userID := identity.UserID
			response.UserID = &userID
		}
	}

	known, err := s.knownOptions(ctx, input.Answers)
	if err != nil {
		return nil, err
	}

	for _, in := range input.Answers {
		question := poll.QuestionByID(in.QuestionID)
		if question == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, in.QuestionID)
		}
		answers, err := materializeAnswers(question, in, known, s.policy)
		if err != nil {
			return nil, err
		}
		response.Answers = append(response.Answers, answers...)
	}

	if err := s.responseRepo.Save(ctx, response); err != nil {
		return nil, err
	}

	return &ports.SubmitVoteResult{ResponseID: response.ID, WasUpdate: wasUpdate}, nil
}

func (s *voteService) findExisting(ctx context.Context, poll *domain.Poll, identity domain.VoterIdentity) (*domain.Response, error) {
	if identity.IsAnonymous() {
		return s.responseRepo.FindByPollAndAnonymousToken(ctx, poll.ID, identity.AnonymousToken)
	}
	return s.responseRepo.FindByPollAndUser(ctx, poll.ID, identity.UserID)
}

func (s *voteService) knownOptions(ctx context.Context, answers []ports.AnswerInput) (map[uuid.UUID]bool, error) {
	ids := collectOptionIDs(answers)
	if len(ids) == 0 {
		return nil, nil
	}
	known, err := s.optionRepo.Exist(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve option references: %w", err)
	}
	return known, nil
}
