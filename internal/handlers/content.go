package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/njrotc-portal-api/internal/content"
)

// RegisterContentRoutes exposes the loaded content collections read-only.
//
// GET /api/content/:collection      -> every entry, sorted by id
// GET /api/content/:collection/*id  -> one entry; ids may contain slashes
func RegisterContentRoutes(r gin.IRoutes, reg *content.Registry) {
	r.GET("/api/content/:collection", func(c *gin.Context) {
		name := c.Param("collection")
		entries, err := reg.List(name)
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"collection": name,
			"entries":    entries,
		})
	})

	r.GET("/api/content/:collection/*id", func(c *gin.Context) {
		id := strings.Trim(c.Param("id"), "/")
		entry, err := reg.Get(c.Param("collection"), id)
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		c.JSON(http.StatusOK, entry)
	})
}
