package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

// OptionRefPolicy decides what happens when a submitted option id does not
// resolve to a stored option.
type OptionRefPolicy int

const (
	// OptionRefNullify stores the answer with a nil option reference.
	OptionRefNullify OptionRefPolicy = iota
	// OptionRefReject fails the whole submission with ErrUnknownOption.
	OptionRefReject
)

// materializeAnswers expands one submitted answer into zero or more answer
// rows. Every payload field present on the input is expanded independently;
// no cross-check against the question's declared type is performed. known
// holds the result of the batch option-existence lookup.
func materializeAnswers(question *domain.Question, input ports.AnswerInput, known map[uuid.UUID]bool, policy OptionRefPolicy) ([]domain.Answer, error) {
	var answers []domain.Answer

	resolve := func(id *uuid.UUID) (*uuid.UUID, error) {
		if id == nil {
			return nil, nil
		}
		if known[*id] {
			ref := *id
			return &ref, nil
		}
		if policy == OptionRefReject {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOption, id)
		}
		return nil, nil
	}

	if input.OptionID != nil {
		ref, err := resolve(input.OptionID)
		if err != nil {
			return nil, err
		}
		answers = append(answers, domain.Answer{QuestionID: question.ID, OptionID: ref})
	}

	for i := range input.OptionIDs {
		ref, err := resolve(&input.OptionIDs[i])
		if err != nil {
			return nil, err
		}
		answers = append(answers, domain.Answer{QuestionID: question.ID, OptionID: ref})
	}

	if input.TextValue != nil && strings.TrimSpace(*input.TextValue) != "" {
		text := *input.TextValue
		answers = append(answers, domain.Answer{QuestionID: question.ID, TextValue: &text})
	}

	if input.NumericValue != nil {
		value := *input.NumericValue
		answers = append(answers, domain.Answer{QuestionID: question.ID, NumericValue: &value})
	}

	for _, entry := range input.Ranking {
		ref, err := resolve(entry.OptionID)
		if err != nil {
			return nil, err
		}
		position := entry.Position
		answers = append(answers, domain.Answer{QuestionID: question.ID, OptionID: ref, Position: &position})
	}

	return answers, nil
}

// collectOptionIDs gathers every option id referenced by the submission so
// existence can be checked in one batch.
func collectOptionIDs(answers []ports.AnswerInput) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id *uuid.UUID) {
		if id == nil || seen[*id] {
			return
		}
		seen[*id] = true
		ids = append(ids, *id)
	}
	for i := range answers {
		add(answers[i].OptionID)
		for j := range answers[i].OptionIDs {
			add(&answers[i].OptionIDs[j])
		}
		for _, entry := range answers[i].Ranking {
			add(entry.OptionID)
		}
	}
	return ids
}
