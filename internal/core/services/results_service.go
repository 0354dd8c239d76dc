package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

type resultsService struct {
	pollRepo     ports.PollRepository
	responseRepo ports.ResponseRepository
}

func NewResultsService(pollRepo ports.PollRepository, responseRepo ports.ResponseRepository) ports.ResultsService {
	return &resultsService{
		pollRepo:     pollRepo,
		responseRepo: responseRepo,
	}
}

func (s *resultsService) Results(ctx context.Context, pollID uuid.UUID) (*domain.PollResults, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByPoll(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	return aggregateResults(poll, responses), nil
}

// aggregateResults computes the per-question statistics over all collected
// responses. totalResponses counts response rows, not answers.
func aggregateResults(poll *domain.Poll, responses []*domain.Response) *domain.PollResults {
	totalResponses := int64(len(responses))

	answersByQuestion := make(map[uuid.UUID][]answerWithVoter)
	for _, response := range responses {
		for i := range response.Answers {
			answer := &response.Answers[i]
			answersByQuestion[answer.QuestionID] = append(answersByQuestion[answer.QuestionID],
				answerWithVoter{answer: answer, response: response})
		}
	}

	results := &domain.PollResults{
		PollID:         poll.ID,
		PollTitle:      poll.Title,
		TotalResponses: totalResponses,
		Questions:      make([]domain.QuestionResult, 0, len(poll.Questions)),
		Voters:         make([]domain.VoterInfo, 0, len(responses)),
	}

	for i := range poll.Questions {
		question := &poll.Questions[i]
		results.Questions = append(results.Questions,
			aggregateQuestion(question, answersByQuestion[question.ID], totalResponses))
	}

	for _, response := range responses {
		results.Voters = append(results.Voters, voterInfo(response))
	}

	return results
}

type answerWithVoter struct {
	answer   *domain.Answer
	response *domain.Response
}

func aggregateQuestion(question *domain.Question, answers []answerWithVoter, totalResponses int64) domain.QuestionResult {
	result := domain.QuestionResult{
		QuestionID:    question.ID,
		QuestionTitle: question.Title,
		Type:          question.Type,
	}

	switch {
	case question.Type.IsChoice():
		result.OptionCounts = aggregateChoice(question, answers, totalResponses)
	case question.Type == domain.QuestionRating:
		result.RatingDistribution, result.AverageRating = aggregateRating(answers)
	case question.Type == domain.QuestionText:
		result.TextResponses, result.TextResponseEntries = aggregateText(answers)
	case question.Type == domain.QuestionRanking:
		result.RankTallies = aggregateRanking(question, answers)
	}

	return result
}

// aggregateChoice tallies answers per option. Options with no answers keep a
// zero count; percentages use the response count as denominator, so
// multi-select questions can sum above 100%. Sorted by descending count, ties
// keeping option order.
func aggregateChoice(question *domain.Question, answers []answerWithVoter, totalResponses int64) []domain.OptionCount {
	countByOption := make(map[uuid.UUID]int64, len(question.Options))
	for _, option := range question.Options {
		countByOption[option.ID] = 0
	}
	for _, a := range answers {
		if a.answer.OptionID != nil {
			countByOption[*a.answer.OptionID]++
		}
	}

	counts := make([]domain.OptionCount, 0, len(question.Options))
	for _, option := range question.Options {
		count := countByOption[option.ID]
		pct := 0.0
		if totalResponses > 0 {
			pct = 100.0 * float64(count) / float64(totalResponses)
		}
		counts = append(counts, domain.OptionCount{
			OptionID:    option.ID,
			OptionLabel: option.Label(),
			ImageURL:    option.ImageURL,
			Count:       count,
			Percentage:  round1(pct),
		})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}

// aggregateRating buckets integer values 1..5; anything outside the range is
// excluded from both the distribution and the average. Bucket percentages are
// over counted ratings, not responses.
func aggregateRating(answers []answerWithVoter) ([]domain.RatingBucket, *float64) {
	var buckets [6]int64
	var sum float64
	var counted int64

	for _, a := range answers {
		if a.answer.NumericValue == nil {
			continue
		}
		value := int(*a.answer.NumericValue)
		if value < 1 || value > 5 {
			continue
		}
		buckets[value]++
		sum += float64(value)
		counted++
	}

	denominator := counted
	if denominator == 0 {
		denominator = 1
	}

	distribution := make([]domain.RatingBucket, 0, 5)
	for value := 1; value <= 5; value++ {
		distribution = append(distribution, domain.RatingBucket{
			Value:      value,
			Count:      buckets[value],
			Percentage: round1(100.0 * float64(buckets[value]) / float64(denominator)),
		})
	}

	var average *float64
	if counted > 0 {
		avg := round1(sum / float64(counted))
		average = &avg
	}

	return distribution, average
}

// aggregateText collects non-blank values verbatim, paired with the voter's
// display identity for the comment view.
func aggregateText(answers []answerWithVoter) ([]string, []domain.TextResponseEntry) {
	texts := make([]string, 0, len(answers))
	entries := make([]domain.TextResponseEntry, 0, len(answers))

	for _, a := range answers {
		if a.answer.TextValue == nil || strings.TrimSpace(*a.answer.TextValue) == "" {
			continue
		}
		texts = append(texts, *a.answer.TextValue)

		entry := domain.TextResponseEntry{
			DisplayName: a.response.VoterDisplayName(),
			Anonymous:   a.response.User == nil,
			Text:        *a.answer.TextValue,
		}
		if a.response.User != nil {
			entry.Email = a.response.User.Email
		}
		entries = append(entries, entry)
	}

	return texts, entries
}

// aggregateRanking exposes raw tallies per (option, position) pair, in option
// order then ascending position.
func aggregateRanking(question *domain.Question, answers []answerWithVoter) []domain.RankTally {
	type key struct {
		option   uuid.UUID
		position int
	}
	tally := make(map[key]int64)
	for _, a := range answers {
		if a.answer.OptionID == nil || a.answer.Position == nil {
			continue
		}
		tally[key{option: *a.answer.OptionID, position: *a.answer.Position}]++
	}

	var tallies []domain.RankTally
	for _, option := range question.Options {
		var positions []int
		for k := range tally {
			if k.option == option.ID {
				positions = append(positions, k.position)
			}
		}
		sort.Ints(positions)
		for _, position := range positions {
			tallies = append(tallies, domain.RankTally{
				OptionID: option.ID,
				Position: position,
				Count:    tally[key{option: option.ID, position: position}],
			})
		}
	}

	return tallies
}

func voterInfo(response *domain.Response) domain.VoterInfo {
	info := domain.VoterInfo{
		DisplayName: response.VoterDisplayName(),
		Anonymous:   response.User == nil,
	}
	if response.User != nil {
		info.Email = response.User.Email
	}
	return info
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
