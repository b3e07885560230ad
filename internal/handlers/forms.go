package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PratikDhanave/njrotc-portal-api/internal/config"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailer"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailtmpl"
	"github.com/PratikDhanave/njrotc-portal-api/internal/metrics"
	"github.com/PratikDhanave/njrotc-portal-api/internal/models"
	"github.com/PratikDhanave/njrotc-portal-api/internal/store"
)

const recordTimeout = 5 * time.Second

// corsHeaders are sent on every form endpoint response, including preflight.
var corsHeaders = [][2]string{
	{"Access-Control-Allow-Credentials", "true"},
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT"},
	{"Access-Control-Allow-Headers", "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version"},
}

// FormDeps are the collaborators shared by the form endpoints.
// Recorder may be nil; Logger, Metrics and Now get defaults when unset.
type FormDeps struct {
	Config   config.Config
	Mailer   mailer.Factory
	Renderer *mailtmpl.Renderer
	Recorder store.Recorder
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Now      func() time.Time
}

type formHandler struct {
	cfg      config.Config
	mailer   mailer.Factory
	renderer *mailtmpl.Renderer
	recorder store.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func newFormHandler(d FormDeps) *formHandler {
	h := &formHandler{
		cfg:      d.Config,
		mailer:   d.Mailer,
		renderer: d.Renderer,
		recorder: d.Recorder,
		metrics:  d.Metrics,
		logger:   d.Logger,
		now:      d.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// FormGate applies the CORS headers and the method contract of a form endpoint:
// OPTIONS is a bare 200, POST continues, anything else is 405.
func FormGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range corsHeaders {
			c.Header(h[0], h[1])
		}

		switch c.Request.Method {
		case http.MethodOptions:
			c.AbortWithStatus(http.StatusOK)
		case http.MethodPost:
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		}
	}
}

// failureMessages maps classified transport errors to user-facing text.
// An empty Rejected means SMTP 550 falls through to Fallback.
type failureMessages struct {
	Auth       string
	Connection string
	Rejected   string
	Fallback   string
}

func (f failureMessages) For(err error) string {
	if mErr, ok := mailer.AsError(err); ok {
		switch {
		case mErr.Code == mailer.CodeAuth:
			return f.Auth
		case mErr.Code == mailer.CodeConnection:
			return f.Connection
		case mErr.ResponseCode == 550 && f.Rejected != "":
			return f.Rejected
		}
	}
	return f.Fallback
}

// deliver opens one transport session, verifies it and sends msgs in order.
func (h *formHandler) deliver(ctx context.Context, form string, msgs ...mailer.Message) error {
	if h.cfg.SMTP.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.SMTP.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { h.metrics.ObserveMail(form, time.Since(start)) }()

	sender := h.mailer(h.cfg.SMTP)
	if err := sender.Verify(ctx); err != nil {
		return err
	}
	h.logger.Info("smtp connection verified", zap.String("form", form))

	for _, msg := range msgs {
		if err := sender.Send(ctx, msg); err != nil {
			return err
		}
		h.logger.Info("email sent",
			zap.String("form", form),
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject))
	}
	return nil
}

// record counts the outcome and, when a submission log is configured, stores it.
// Store failures are logged and never change the response.
func (h *formHandler) record(ctx context.Context, sub models.Submission) {
	h.metrics.IncrementSubmission(sub.Form, sub.Outcome)
	if h.recorder == nil {
		return
	}

	sub.ID = uuid.New()
	sub.CreatedAt = h.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := h.recorder.RecordSubmission(ctx, sub); err != nil {
		h.logger.Error("failed to record submission",
			zap.String("submission_id", sub.ID.String()),
			zap.String("form", sub.Form),
			zap.String("outcome", sub.Outcome),
			zap.Error(err))
	}
}

func (h *formHandler) debugErrors() bool {
	return h.cfg.Development() || h.cfg.DebugErrors
}

// fail answers a transport or render failure with 500.
func (h *formHandler) fail(c *gin.Context, sub models.Submission, err error, msgs failureMessages, debug func(error) any) {
	h.logger.Error("email sending error", zap.String("form", sub.Form), zap.Error(err))

	sub.Outcome = metrics.OutcomeFailed
	sub.Error = err.Error()
	h.record(c.Request.Context(), sub)

	resp := models.Response{Success: false, Error: msgs.For(err)}
	if h.debugErrors() {
		resp.Debug = debug(err)
	}
	c.JSON(http.StatusInternalServerError, resp)
}

// timestamp formats t like a JavaScript ISO string.
func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
