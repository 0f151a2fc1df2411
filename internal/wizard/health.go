package wizard

import (
	"errors"
	"fmt"
)

// HealthQuestions is the pre-participation screening shown before generation.
var HealthQuestions = [7]string{
	"Has a doctor ever said you have a heart condition?",
	"Do you feel pain in your chest when you do physical activity?",
	"In the past 3 months, have you had chest pain when not doing physical activity?",
	"Do you lose balance because of dizziness or ever lose consciousness?",
	"Do you have a bone or joint problem that could be made worse by exercise?",
	"Are you currently taking medication for blood pressure or a heart condition?",
	"Do you know of any other reason why you should not do physical activity?",
}

var (
	ErrNotEligible            = errors.New("not eligible for plan generation")
	ErrHealthIncomplete       = fmt.Errorf("%w: health questionnaire incomplete", ErrNotEligible)
	ErrHealthRisk             = fmt.Errorf("%w: health questionnaire reports a risk, consult a physician", ErrNotEligible)
	ErrDeclarationNotAccepted = fmt.Errorf("%w: health declaration not accepted", ErrNotEligible)
)

// HealthDeclaration holds the screening answers. A nil answer is unanswered.
type HealthDeclaration struct {
	Answers        [7]*bool `json:"answers"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
	Accepted       bool     `json:"accepted"`
}

// Answer records the answer to question i (0-based).
func (h *HealthDeclaration) Answer(i int, yes bool) {
	if i < 0 || i >= len(h.Answers) {
		return
	}
	h.Answers[i] = &yes
}

// Complete reports whether every question has an answer.
func (h HealthDeclaration) Complete() bool {
	for _, a := range h.Answers {
		if a == nil {
			return false
		}
	}
	return true
}

// AnyAffirmative reports whether any answered question was "yes".
func (h HealthDeclaration) AnyAffirmative() bool {
	for _, a := range h.Answers {
		if a != nil && *a {
			return true
		}
	}
	return false
}

// CheckEligibility is the hard gate in front of generation.
func CheckEligibility(h HealthDeclaration) error {
	if !h.Complete() {
		return ErrHealthIncomplete
	}
	if h.AnyAffirmative() {
		return ErrHealthRisk
	}
	if !h.Accepted {
		return ErrDeclarationNotAccepted
	}
	return nil
}
