package models

// AdviceRequest asks the responder a question.
type AdviceRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// AdviceResponse contains the responder's answer.
type AdviceResponse struct {
	Answer     string `json:"answer"`
	Rule       string `json:"rule,omitempty"`
	Matched    bool   `json:"matched"`
	Language   string `json:"language"`
	Requested  string `json:"requested"`
	Translated bool   `json:"translated"`
	Notice     string `json:"notice,omitempty"`
}
