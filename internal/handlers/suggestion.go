package handlers

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PratikDhanave/njrotc-portal-api/internal/mailer"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailtmpl"
	"github.com/PratikDhanave/njrotc-portal-api/internal/metrics"
	"github.com/PratikDhanave/njrotc-portal-api/internal/models"
)

const (
	suggestionSenderName    = "NJROTC Suggestion Box"
	suggestionMissingFields = "Missing required fields. Please fill in all fields."
)

var suggestionFailures = failureMessages{
	Auth:       "Email service authentication failed.",
	Connection: "Cannot connect to suggestion service.",
	Fallback:   "Failed to submit suggestion",
}

// RegisterSuggestionRoutes registers the suggestion-box endpoint.
//
// POST /api/suggestion
// - Requires fullName, schoolId, grade, suggestionType, suggestionText
// - Test mode echoes the payload (text truncated) without sending mail
// - Otherwise mails the suggestion inbox
func RegisterSuggestionRoutes(r gin.IRoutes, d FormDeps) {
	h := newFormHandler(d)
	r.Any("/api/suggestion", FormGate(), h.suggestion)
}

func (h *formHandler) suggestion(c *gin.Context) {
	var req models.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncrementSubmission(models.FormSuggestion, metrics.OutcomeRejected)
		c.JSON(http.StatusBadRequest, models.Response{Success: false, Error: suggestionMissingFields})
		return
	}

	now := h.now()
	length := utf8.RuneCountInString(req.SuggestionText)
	h.logger.Info("njrotc suggestion received",
		zap.String("full_name", req.FullName),
		zap.String("school_id", req.SchoolID),
		zap.String("grade", string(req.Grade)),
		zap.String("suggestion_type", req.SuggestionType),
		zap.Int("suggestion_length", length),
		zap.Time("timestamp", now))

	sub := models.Submission{
		Form:     models.FormSuggestion,
		FullName: req.FullName,
		SchoolID: req.SchoolID,
		Grade:    string(req.Grade),
		Category: req.SuggestionType,
	}

	if h.cfg.TestMode() {
		h.logger.Info("test mode: suggestion logged, no email sent", zap.String("form", models.FormSuggestion))
		sub.Outcome = metrics.OutcomeTestMode
		h.record(c.Request.Context(), sub)
		c.JSON(http.StatusOK, models.Response{
			Success:  true,
			Message:  "Test mode: Suggestion received (no email sent)",
			TestMode: true,
			Data:     req.Echo(),
		})
		return
	}

	if !h.cfg.SMTP.HasCredentials() {
		h.logger.Error("missing SMTP credentials", zap.String("form", models.FormSuggestion))
		sub.Outcome = metrics.OutcomeConfigError
		h.record(c.Request.Context(), sub)
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Suggestion service not available. Please contact administrator.",
			Debug:   "Missing email configuration",
		})
		return
	}

	mail, err := h.renderer.SuggestionStaff(mailtmpl.Suggestion{
		FullName:    req.FullName,
		SchoolID:    req.SchoolID,
		Grade:       string(req.Grade),
		Type:        req.SuggestionType,
		Text:        req.SuggestionText,
		SubmittedAt: now,
	})
	if err != nil {
		h.fail(c, sub, err, suggestionFailures, suggestionDebug)
		return
	}

	err = h.deliver(c.Request.Context(), models.FormSuggestion, mailer.Message{
		From:    h.cfg.Sender(suggestionSenderName),
		To:      []string{h.cfg.SuggestionRecipient()},
		Subject: mail.Subject,
		HTML:    mail.HTML,
		Text:    mail.Text,
	})
	if err != nil {
		h.fail(c, sub, err, suggestionFailures, suggestionDebug)
		return
	}

	sub.Outcome = metrics.OutcomeSent
	h.record(c.Request.Context(), sub)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Thank you for your suggestion! It has been submitted to NJROTC staff.",
		Data: models.SuggestionResult{
			SubmittedBy:    req.FullName,
			SuggestionType: req.SuggestionType,
			CharacterCount: length,
			Timestamp:      timestamp(now),
		},
	})
}

func suggestionDebug(err error) any {
	return err.Error()
}
