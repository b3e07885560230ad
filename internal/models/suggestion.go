package models

import "unicode/utf8"

// SuggestionEchoLimit is how much of the suggestion text the test-mode response echoes back.
const SuggestionEchoLimit = 100

// SuggestionRequest is the POST /api/suggestion payload.
type SuggestionRequest struct {
	FullName       string `json:"fullName" binding:"required"`
	SchoolID       string `json:"schoolId" binding:"required"`
	Grade          Grade  `json:"grade" binding:"required"`
	SuggestionType string `json:"suggestionType" binding:"required"`
	SuggestionText string `json:"suggestionText" binding:"required"`
}

// Echo returns a copy with the suggestion text cut to SuggestionEchoLimit runes.
func (r SuggestionRequest) Echo() SuggestionRequest {
	if utf8.RuneCountInString(r.SuggestionText) > SuggestionEchoLimit {
		r.SuggestionText = string([]rune(r.SuggestionText)[:SuggestionEchoLimit]) + "..."
	}
	return r
}

// SuggestionResult is the data block of a successful suggestion.
type SuggestionResult struct {
	SubmittedBy    string `json:"submitted_by"`
	SuggestionType string `json:"suggestion_type"`
	CharacterCount int    `json:"character_count"`
	Timestamp      string `json:"timestamp"`
}
