package report

import (
	"slices"
	"time"

	"github.com/okian/assay/internal/domain/model"
)

// Input kinds used to render a response's options.
const (
	InputRadio    = "radio"
	InputCheckbox = "checkbox"
)

// ChoiceView is one option of an answered question.
type ChoiceView struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ResponseView is one answered question of an individual assessment.
type ResponseView struct {
	Question string             `json:"question"`
	Type     model.QuestionType `json:"type"`
	Input    string             `json:"input"`
	Choices  []ChoiceView       `json:"choices"`
	Score    float64            `json:"score"`
}

// AssessmentView is the individual responses view of one assessment.
type AssessmentView struct {
	ID        string         `json:"id"`
	Date      time.Time      `json:"date"`
	DateLabel string         `json:"date_label"`
	Role      string         `json:"role,omitempty"`
	Score     float64        `json:"score"`
	Responses []ResponseView `json:"responses"`
}

// BuildAssessmentView shapes an assessment for display. employee may be nil
// when the respondent record is missing.
func BuildAssessmentView(a model.Assessment, employee *model.Employee) AssessmentView {
	v := AssessmentView{
		ID:        a.ID,
		Date:      a.Date,
		DateLabel: FormatDate(a.Date),
		Score:     a.Score,
		Responses: make([]ResponseView, 0, len(a.Responses)),
	}
	if employee != nil {
		v.Role = employee.Role
	}

	for _, r := range a.Responses {
		rv := ResponseView{
			Question: r.Question,
			Type:     r.Type,
			Input:    InputRadio,
			Choices:  make([]ChoiceView, len(r.Options)),
			Score:    r.Score,
		}
		if r.Type == model.QuestionMulti {
			rv.Input = InputCheckbox
		}
		for i, opt := range r.Options {
			rv.Choices[i] = ChoiceView{Label: opt, Selected: slices.Contains(r.Answer, i)}
		}
		v.Responses = append(v.Responses, rv)
	}
	return v
}
