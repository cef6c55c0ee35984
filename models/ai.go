package models

// AIExchange is one question/answer pair from the fallback assistant.
type AIExchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AIContext is the rolling conversation window given to the assistant so
// follow-up questions stay coherent.
type AIContext struct {
	History []AIExchange `json:"history,omitempty"`
}
