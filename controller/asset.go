package controller

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// Generated image ids are UUIDs or similar opaque tokens. Anything else is
// rejected outright; the id never touches a filesystem path unvalidated.
var generatedImageIdPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{7,63}$`)

// GetGeneratedImage serves a previously stored image by id.
func GetGeneratedImage(c *gin.Context) {
	id := c.Param("id")
	if !generatedImageIdPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image id"})
		return
	}

	data, mimeType, err := imageStore.Load(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, mimeType, data)
}
