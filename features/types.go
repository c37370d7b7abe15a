package features

import "fmt"

// Question types derived from the last digit of the item code.
const (
	QuestionMain     = "Main"
	QuestionFollowUp = "FollowUp"
)

// Filler positions within a response turn.
const (
	PositionInitial  = "INI"
	PositionInternal = "INT"
)

// Input identifies the recording the rows are keyed by.
type Input struct {
	ParticipantID string
	ListNum       string
}

type Latency struct {
	ParticipantID string
	ListNum       string
	QuestionNum   string
	ResponseCond  string
	RLMilSec      float64
}

type SpeakingRate struct {
	ParticipantID string
	ListNum       string
	QuestionNum   string
	ResponseCond  string
	DurationSec   float64
	SyllNum       int
	SR            float64
}

type FPRateCondition struct {
	ParticipantID  string
	ListNum        string
	ResponseCond   string
	QuestionType   string
	SumDurationMin float64
	Freq           int
	FR             float64
}

type FPRateItem struct {
	ParticipantID  string
	ListNum        string
	ItemID         string
	ResponseCond   string
	SumDurationMin float64
	Freq           int
	FR             float64
}

type FPRateTurn struct {
	ParticipantID string
	ListNum       string
	QuestionNum   string
	ResponseCond  string
	QuestionType  string
	DurationMin   float64
	Freq          int
	FR            float64
}

type FPFormPosition struct {
	ParticipantID string
	ListNum       string
	QuestionNum   string
	ResponseCond  string
	Form          string
	Position      string
}

// FPRates holds the three aggregation levels of the filler-rate scan.
type FPRates struct {
	ByCondition []FPRateCondition
	ByItem      []FPRateItem
	ByTurn      []FPRateTurn
}

// Results collects every extractor output for one or more recordings.
type Results struct {
	Latency         []Latency
	SpeakingRate    []SpeakingRate
	FPRateCondition []FPRateCondition
	FPRateItem      []FPRateItem
	FPRateTurn      []FPRateTurn
	FPFormPosition  []FPFormPosition
}

// Append concatenates o onto r.
func (r *Results) Append(o *Results) {
	if o == nil {
		return
	}
	r.Latency = append(r.Latency, o.Latency...)
	r.SpeakingRate = append(r.SpeakingRate, o.SpeakingRate...)
	r.FPRateCondition = append(r.FPRateCondition, o.FPRateCondition...)
	r.FPRateItem = append(r.FPRateItem, o.FPRateItem...)
	r.FPRateTurn = append(r.FPRateTurn, o.FPRateTurn...)
	r.FPFormPosition = append(r.FPFormPosition, o.FPFormPosition...)
}

// Counts returns row counts per output category.
func (r *Results) Counts() map[string]int {
	return map[string]int{
		"latency":           len(r.Latency),
		"speaking_rate":     len(r.SpeakingRate),
		"fp_rate_condition": len(r.FPRateCondition),
		"fp_rate_item":      len(r.FPRateItem),
		"fp_rate_turn":      len(r.FPRateTurn),
		"fp_form_position":  len(r.FPFormPosition),
	}
}

// ConditionNotFoundError means a response has no condition interval
// starting at the same time, i.e. the aligner and the extractor disagree.
type ConditionNotFoundError struct {
	ParticipantID string
	ListNum       string
	QuestionNum   string
}

func (e *ConditionNotFoundError) Error() string {
	return fmt.Sprintf("condition not found for response %s in participant %s, list %s", e.QuestionNum, e.ParticipantID, e.ListNum)
}
