package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testPoll() (*domain.Poll, uuid.UUID, []uuid.UUID) {
	questionID := uuid.New()
	options := []uuid.UUID{uuid.New(), uuid.New()}
	poll := &domain.Poll{
		ID:             uuid.New(),
		Title:          "Favorite color",
		IsActive:       true,
		AllowAnonymous: true,
		Questions: []domain.Question{{
			ID:    questionID,
			Type:  domain.QuestionSingleChoice,
			Title: "Pick one",
			Options: []domain.Option{
				{ID: options[0], TextContent: "Red"},
				{ID: options[1], TextContent: "Blue"},
			},
		}},
	}
	return poll, questionID, options
}

func TestSubmitCreatesResponse(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	result, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:   poll.ID,
		UserID:   &userID,
		ClientIP: "10.0.0.1",
		Answers:  []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
	})
	require.NoError(t, err)
	assert.False(t, result.WasUpdate)
	assert.NotEqual(t, uuid.Nil, result.ResponseID)

	stored := responseRepo.responses[result.ResponseID]
	require.NotNil(t, stored)
	assert.Equal(t, userID, *stored.UserID)
	assert.Nil(t, stored.AnonymousID)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, options[0], *stored.Answers[0].OptionID)
}

func TestSubmitTwiceReplacesAnswers(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	input := ports.SubmitVoteInput{
		PollID:  poll.ID,
		UserID:  &userID,
		Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
	}

	first, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	input.Answers = []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[1]}}
	second, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.WasUpdate)
	assert.Equal(t, first.ResponseID, second.ResponseID)

	count, err := responseRepo.CountByPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// The stored answer set is the second submission's, not a union.
	stored := responseRepo.responses[second.ResponseID]
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, options[1], *stored.Answers[0].OptionID)
}

func TestSubmitAnonymousIdentity(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	result, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:         poll.ID,
		AnonymousToken: "session-123",
		Answers:        []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
	})
	require.NoError(t, err)

	stored := responseRepo.responses[result.ResponseID]
	assert.Nil(t, stored.UserID)
	assert.Equal(t, "session-123", *stored.AnonymousID)
}

func TestSubmitIdentityErrors(t *testing.T) {
	poll, questionID, options := testPoll()

	t.Run("anonymous allowed but no identity", func(t *testing.T) {
		svc := NewVoteService(newFakePollRepo(poll), newFakeResponseRepo(), newFakeOptionRepo(options...))
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:  poll.ID,
			Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
		})
		assert.ErrorIs(t, err, domain.ErrIdentityRequired)
	})

	t.Run("anonymous forbidden without user", func(t *testing.T) {
		restricted, restrictedQ, restrictedOpts := testPoll()
		restricted.AllowAnonymous = false
		svc := NewVoteService(newFakePollRepo(restricted), newFakeResponseRepo(), newFakeOptionRepo(restrictedOpts...))
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:         restricted.ID,
			AnonymousToken: "session-123",
			Answers:        []ports.AnswerInput{{QuestionID: restrictedQ, OptionID: &restrictedOpts[0]}},
		})
		assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
	})
}

func TestSubmitPollPreconditions(t *testing.T) {
	userID := uuid.New()

	t.Run("poll not found", func(t *testing.T) {
		svc := NewVoteService(newFakePollRepo(), newFakeResponseRepo(), newFakeOptionRepo())
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{PollID: uuid.New(), UserID: &userID})
		assert.ErrorIs(t, err, domain.ErrPollNotFound)
	})

	t.Run("submitting before the window opens", func(t *testing.T) {
		poll, questionID, options := testPoll()
		now := time.Now()
		starts := now.Add(time.Hour)
		poll.StartsAt = &starts
		svc := NewVoteService(newFakePollRepo(poll), newFakeResponseRepo(), newFakeOptionRepo(options...),
			WithClock(fixedClock(now)))
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:  poll.ID,
			UserID:  &userID,
			Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
		})
		assert.ErrorIs(t, err, domain.ErrPollNotOpen)
	})

	t.Run("submitting after the window closed", func(t *testing.T) {
		poll, questionID, options := testPoll()
		now := time.Now()
		ends := now.Add(-time.Hour)
		poll.EndsAt = &ends
		svc := NewVoteService(newFakePollRepo(poll), newFakeResponseRepo(), newFakeOptionRepo(options...),
			WithClock(fixedClock(now)))
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:  poll.ID,
			UserID:  &userID,
			Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
		})
		assert.ErrorIs(t, err, domain.ErrPollNotOpen)
	})
}

func TestSubmitUnknownQuestionFailsWholeSubmission(t *testing.T) {
	poll, _, options := testPoll()
	responseRepo := newFakeResponseRepo()
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:  poll.ID,
		UserID:  &userID,
		Answers: []ports.AnswerInput{{QuestionID: uuid.New(), OptionID: &options[0]}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownQuestion)

	count, err := responseRepo.CountByPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestSubmitMultiSelectExpansion(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	result, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:  poll.ID,
		UserID:  &userID,
		Answers: []ports.AnswerInput{{QuestionID: questionID, OptionIDs: options}},
	})
	require.NoError(t, err)

	stored := responseRepo.responses[result.ResponseID]
	require.Len(t, stored.Answers, 2)
	assert.Equal(t, options[0], *stored.Answers[0].OptionID)
	assert.Equal(t, options[1], *stored.Answers[1].OptionID)
	for _, answer := range stored.Answers {
		assert.Equal(t, result.ResponseID, answer.ResponseID)
		assert.Equal(t, questionID, answer.QuestionID)
	}
}

func TestSubmitRetriesOnceOnCreationConflict(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	responseRepo.conflictOnCreate = 1
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	result, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:  poll.ID,
		UserID:  &userID,
		Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
	})
	require.NoError(t, err)
	// The retry finds the competing row and follows the update path.
	assert.True(t, result.WasUpdate)

	count, err := responseRepo.CountByPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSubmitSecondConflictPropagates(t *testing.T) {
	poll, questionID, options := testPoll()
	responseRepo := newFakeResponseRepo()
	responseRepo.alwaysConflict = true
	svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

	userID := uuid.New()
	_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:  poll.ID,
		UserID:  &userID,
		Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &options[0]}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateResponse)
	// Exactly one retry: two save attempts total.
	assert.Equal(t, 2, responseRepo.saveCalls)
}

func TestSubmitDanglingOptionPolicies(t *testing.T) {
	unknown := uuid.New()

	t.Run("default policy nullifies the reference", func(t *testing.T) {
		poll, questionID, options := testPoll()
		responseRepo := newFakeResponseRepo()
		svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...))

		userID := uuid.New()
		result, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:  poll.ID,
			UserID:  &userID,
			Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &unknown}},
		})
		require.NoError(t, err)

		stored := responseRepo.responses[result.ResponseID]
		require.Len(t, stored.Answers, 1)
		assert.Nil(t, stored.Answers[0].OptionID)
	})

	t.Run("reject policy fails the submission", func(t *testing.T) {
		poll, questionID, options := testPoll()
		responseRepo := newFakeResponseRepo()
		svc := NewVoteService(newFakePollRepo(poll), responseRepo, newFakeOptionRepo(options...),
			WithOptionRefPolicy(OptionRefReject))

		userID := uuid.New()
		_, err := svc.Submit(context.Background(), ports.SubmitVoteInput{
			PollID:  poll.ID,
			UserID:  &userID,
			Answers: []ports.AnswerInput{{QuestionID: questionID, OptionID: &unknown}},
		})
		assert.ErrorIs(t, err, domain.ErrUnknownOption)
	})
}
