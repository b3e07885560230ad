package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PratikDhanave/njrotc-portal-api/internal/mailer"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailtmpl"
	"github.com/PratikDhanave/njrotc-portal-api/internal/metrics"
	"github.com/PratikDhanave/njrotc-portal-api/internal/models"
)

const (
	signupSenderName    = "NJROTC Parlier"
	signupMissingFields = "Missing required fields: fullName, schoolId, grade, and email are required"
)

var signupFailures = failureMessages{
	Auth:       "Email authentication failed. Please check SMTP credentials.",
	Connection: "Cannot connect to email server. Check network or SMTP settings.",
	Rejected:   "Recipient email address may be invalid or rejected.",
	Fallback:   "Failed to process signup",
}

// RegisterSignupRoutes registers the program signup endpoint.
//
// POST /api/signup
// - Requires fullName, schoolId, grade, email; program is optional
// - Test mode echoes the payload without sending mail
// - Otherwise mails staff, then sends the cadet a confirmation
func RegisterSignupRoutes(r gin.IRoutes, d FormDeps) {
	h := newFormHandler(d)
	r.Any("/api/signup", FormGate(), h.signup)
}

func (h *formHandler) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncrementSubmission(models.FormSignup, metrics.OutcomeRejected)
		c.JSON(http.StatusBadRequest, models.Response{Success: false, Error: signupMissingFields})
		return
	}

	now := h.now()
	h.logger.Info("njrotc signup received",
		zap.String("full_name", req.FullName),
		zap.String("school_id", req.SchoolID),
		zap.String("grade", string(req.Grade)),
		zap.String("email", req.Email),
		zap.String("program", req.Program),
		zap.Time("timestamp", now))

	sub := models.Submission{
		Form:     models.FormSignup,
		FullName: req.FullName,
		SchoolID: req.SchoolID,
		Grade:    string(req.Grade),
		Email:    req.Email,
		Category: req.Program,
	}

	if h.cfg.TestMode() {
		h.logger.Info("test mode: no emails sent", zap.String("form", models.FormSignup))
		sub.Outcome = metrics.OutcomeTestMode
		h.record(c.Request.Context(), sub)
		c.JSON(http.StatusOK, models.Response{
			Success:  true,
			Message:  "Test mode: Signup received (no email sent)",
			TestMode: true,
			Data:     req,
		})
		return
	}

	if !h.cfg.SMTP.HasCredentials() {
		h.logger.Error("missing SMTP credentials", zap.String("form", models.FormSignup))
		sub.Outcome = metrics.OutcomeConfigError
		h.record(c.Request.Context(), sub)
		c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Error:   "Email service not configured. Please contact administrator.",
			Debug:   "Missing SMTP_USER or SMTP_PASS environment variables",
		})
		return
	}

	view := mailtmpl.Signup{
		FullName:    req.FullName,
		SchoolID:    req.SchoolID,
		Grade:       string(req.Grade),
		Email:       req.Email,
		Program:     req.Program,
		SubmittedAt: now,
	}
	staff, err := h.renderer.SignupStaff(view)
	if err != nil {
		h.fail(c, sub, err, signupFailures, signupDebug)
		return
	}
	student, err := h.renderer.SignupStudent(view)
	if err != nil {
		h.fail(c, sub, err, signupFailures, signupDebug)
		return
	}

	from := h.cfg.Sender(signupSenderName)
	err = h.deliver(c.Request.Context(), models.FormSignup,
		mailer.Message{From: from, To: h.cfg.SignupRecipients(), Subject: staff.Subject, HTML: staff.HTML, Text: staff.Text},
		mailer.Message{From: from, To: []string{req.Email}, Subject: student.Subject, HTML: student.HTML, Text: student.Text},
	)
	if err != nil {
		h.fail(c, sub, err, signupFailures, signupDebug)
		return
	}

	sub.Outcome = metrics.OutcomeSent
	h.record(c.Request.Context(), sub)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "NJROTC signup submitted successfully! Welcome email sent to cadet.",
		Data: models.SignupResult{
			Cadet:       req.FullName,
			EmailSentTo: req.Email,
			Timestamp:   timestamp(now),
		},
	})
}

func signupDebug(err error) any {
	d := models.MailDebug{Message: err.Error()}
	if mErr, ok := mailer.AsError(err); ok {
		d.Code = mErr.Code
		d.ResponseCode = mErr.ResponseCode
	}
	return d
}
