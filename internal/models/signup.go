package models

// SignupRequest is the POST /api/signup payload.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	SchoolID string `json:"schoolId" binding:"required"`
	Grade    Grade  `json:"grade" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Program  string `json:"program,omitempty"`
}

// SignupResult is the data block of a successful signup.
type SignupResult struct {
	Cadet       string `json:"cadet"`
	EmailSentTo string `json:"email_sent_to"`
	Timestamp   string `json:"timestamp"`
}
