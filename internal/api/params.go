package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// pathID parses the :id path parameter. Anything that is not a positive
// integer cannot name a row and is reported as not found.
func pathID(c *gin.Context, kind service.MessageKind) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &service.NotFoundError{Message: service.Format(kind, raw)}
	}
	return uint(id), nil
}

// truthy treats a missing value, "0" and "false" as false, anything else as
// true.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}

// recipesLimit reads the recipes_limit query parameter. Zero means no limit.
func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func badJSON() error {
	return &service.ValidationError{Field: "non_field_errors", Message: "Invalid JSON body."}
}
