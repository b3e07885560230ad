package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Form names used in logs, metrics and the submission log.
const (
	FormSignup     = "signup"
	FormSuggestion = "suggestion"
)

// Grade accepts a JSON string or number; the portal form sends either.
// Empty, null and zero are treated as missing.
type Grade string

func (g *Grade) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*g = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = Grade(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("grade must be a string or number")
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*g = ""
		return nil
	}
	*g = Grade(n.String())
	return nil
}

// Submission is one row in the submission log.
type Submission struct {
	ID        uuid.UUID
	Form      string
	FullName  string
	SchoolID  string
	Grade     string
	Email     string // signup only
	Category  string // program or suggestion type
	Outcome   string
	Error     string
	CreatedAt time.Time
}

// SubmissionCountResponse is returned by GET /api/admin/submissions/count.
type SubmissionCountResponse struct {
	Form  string `json:"form"`
	Count int64  `json:"count"`
}
