package domain

import "github.com/google/uuid"

// PollResults is the aggregated results document for one poll.
type PollResults struct {
	PollID         uuid.UUID        `json:"poll_id"`
	PollTitle      string           `json:"poll_title"`
	TotalResponses int64            `json:"total_responses"`
	Questions      []QuestionResult `json:"question_results"`
	Voters         []VoterInfo      `json:"voters"`
}

// QuestionResult holds per-question statistics. Which fields are populated
// depends on the question type.
type QuestionResult struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	QuestionTitle string       `json:"question_title"`
	Type          QuestionType `json:"type"`

	// Choice kinds: count and percentage per option, sorted by descending
	// count. Percentages use total responses as denominator, so multi-select
	// questions can sum above 100%.
	OptionCounts []OptionCount `json:"option_counts,omitempty"`

	// Rating: distribution over the 1..5 buckets plus the average of the
	// counted values, absent when no valid ratings were submitted.
	RatingDistribution []RatingBucket `json:"rating_distribution,omitempty"`
	AverageRating      *float64       `json:"average_rating,omitempty"`

	// Text: verbatim values, plus entries paired with voter identities for
	// display as comments.
	TextResponses       []string            `json:"text_responses,omitempty"`
	TextResponseEntries []TextResponseEntry `json:"text_response_entries,omitempty"`

	// Ranking: raw tallies per (option, position) pair.
	RankTallies []RankTally `json:"rank_tallies,omitempty"`
}

type OptionCount struct {
	OptionID    uuid.UUID `json:"option_id"`
	OptionLabel string    `json:"option_label"`
	ImageURL    string    `json:"image_url,omitempty"`
	Count       int64     `json:"count"`
	Percentage  float64   `json:"percentage"`
}

type RatingBucket struct {
	Value      int     `json:"value"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TextResponseEntry struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Anonymous   bool   `json:"anonymous"`
	Text        string `json:"text"`
}

type RankTally struct {
	OptionID uuid.UUID `json:"option_id"`
	Position int       `json:"position"`
	Count    int64     `json:"count"`
}

type VoterInfo struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Anonymous   bool   `json:"anonymous"`
}
