package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Created writes a 201 response for a newly persisted resource.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}
