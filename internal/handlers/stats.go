package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/njrotc-portal-api/internal/models"
)

// SubmissionCounter is the read side of the submission log.
type SubmissionCounter interface {
	CountSubmissions(ctx context.Context, form string, from, to time.Time) (int64, error)
}

// RegisterStatsRoutes registers the staff reporting endpoint.
//
// GET /api/admin/submissions/count?form=...&from=...&to=...
// - Requires X-API-Key (admin context)
// - Returns count for the window [from,to)
func RegisterStatsRoutes(r gin.IRoutes, st SubmissionCounter) {
	r.GET("/api/admin/submissions/count", func(c *gin.Context) {
		form := c.Query("form")
		fromStr := c.Query("from")
		toStr := c.Query("to")

		// Required query params per contract.
		if form == "" || fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "form, from, to are required"})
			return
		}
		if form != models.FormSignup && form != models.FormSuggestion {
			c.JSON(http.StatusBadRequest, gin.H{"error": "form must be signup or suggestion"})
			return
		}

		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}

		from = from.UTC()
		to = to.UTC()

		// Validate window to avoid confusing results.
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be < to"})
			return
		}

		count, err := st.CountSubmissions(c.Request.Context(), form, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		c.JSON(http.StatusOK, models.SubmissionCountResponse{
			Form:  form,
			Count: count,
		})
	})
}
