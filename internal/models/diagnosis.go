package models

import "strings"

// Prediction is one ranked label from a plant disease classifier.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Diagnosis is the classifier result for one leaf photo.
type Diagnosis struct {
	Predictions []Prediction `json:"predictions"` // Highest score first
	Advice      string       `json:"advice,omitempty"`
	AdviceRule  string       `json:"advice_rule,omitempty"`
}

// Top returns the highest ranked prediction.
func (d *Diagnosis) Top() Prediction {
	if len(d.Predictions) == 0 {
		return Prediction{}
	}
	return d.Predictions[0]
}

// HumanizeLabel turns a classifier label such as "Tomato___Early_blight"
// into "Tomato Early blight".
func HumanizeLabel(label string) string {
	return strings.Join(strings.FieldsFunc(label, func(r rune) bool {
		return r == '_' || r == ' '
	}), " ")
}
