package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheikhmama/soundage/internal/core/domain"
	"github.com/cheikhmama/soundage/internal/core/ports"
)

func TestMaterializeAnswers(t *testing.T) {
	question := &domain.Question{ID: uuid.New(), Type: domain.QuestionSingleChoice}
	optA := uuid.New()
	optB := uuid.New()
	known := map[uuid.UUID]bool{optA: true, optB: true}

	t.Run("single option id", func(t *testing.T) {
		answers, err := materializeAnswers(question, ports.AnswerInput{OptionID: &optA}, known, OptionRefNullify)
		require.NoError(t, err)
		require.Len(t, answers, 1)
		assert.Equal(t, optA, *answers[0].OptionID)
		assert.Equal(t, question.ID, answers[0].QuestionID)
	})

	t.Run("option id list expands one row per id", func(t *testing.T) {
		answers, err := materializeAnswers(question, ports.AnswerInput{OptionIDs: []uuid.UUID{optA, optB}}, known, OptionRefNullify)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, optA, *answers[0].OptionID)
		assert.Equal(t, optB, *answers[1].OptionID)
	})

	t.Run("blank text produces nothing", func(t *testing.T) {
		blank := "   "
		answers, err := materializeAnswers(question, ports.AnswerInput{TextValue: &blank}, known, OptionRefNullify)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})

	t.Run("text and numeric on one input both materialize", func(t *testing.T) {
		text := "great"
		value := 4.0
		answers, err := materializeAnswers(question, ports.AnswerInput{TextValue: &text, NumericValue: &value}, known, OptionRefNullify)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, "great", *answers[0].TextValue)
		assert.Equal(t, 4.0, *answers[1].NumericValue)
	})

	t.Run("ranking expands one row per pair", func(t *testing.T) {
		answers, err := materializeAnswers(question, ports.AnswerInput{Ranking: []ports.RankingEntryInput{
			{OptionID: &optA, Position: 1},
			{OptionID: &optB, Position: 2},
		}}, known, OptionRefNullify)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, optA, *answers[0].OptionID)
		assert.Equal(t, 1, *answers[0].Position)
		assert.Equal(t, optB, *answers[1].OptionID)
		assert.Equal(t, 2, *answers[1].Position)
	})

	t.Run("nullify policy stores dangling refs as nil", func(t *testing.T) {
		unknown := uuid.New()
		answers, err := materializeAnswers(question, ports.AnswerInput{OptionID: &unknown}, known, OptionRefNullify)
		require.NoError(t, err)
		require.Len(t, answers, 1)
		assert.Nil(t, answers[0].OptionID)
	})

	t.Run("reject policy fails on dangling refs", func(t *testing.T) {
		unknown := uuid.New()
		_, err := materializeAnswers(question, ports.AnswerInput{OptionID: &unknown}, known, OptionRefReject)
		assert.ErrorIs(t, err, domain.ErrUnknownOption)
	})

	t.Run("empty input produces nothing", func(t *testing.T) {
		answers, err := materializeAnswers(question, ports.AnswerInput{QuestionID: question.ID}, known, OptionRefNullify)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})
}

func TestCollectOptionIDs(t *testing.T) {
	optA := uuid.New()
	optB := uuid.New()
	optC := uuid.New()

	ids := collectOptionIDs([]ports.AnswerInput{
		{OptionID: &optA, OptionIDs: []uuid.UUID{optA, optB}},
		{Ranking: []ports.RankingEntryInput{{OptionID: &optC, Position: 1}, {Position: 2}}},
	})

	assert.ElementsMatch(t, []uuid.UUID{optA, optB, optC}, ids)
}
