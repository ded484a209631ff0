// File: /utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PageResponse is the context handed to the page renderer.
type PageResponse struct {
	Page     string      `json:"page"`
	Messages []Flash     `json:"messages"`
	Data     interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendPage renders a page context, draining pending flash messages into it.
func SendPage(c *gin.Context, page string, data interface{}) {
	SendPageStatus(c, http.StatusOK, page, data)
}

func SendPageStatus(c *gin.Context, status int, page string, data interface{}) {
	messages := ConsumeFlashes(c)
	if messages == nil {
		messages = []Flash{}
	}
	c.JSON(status, PageResponse{
		Page:     page,
		Messages: messages,
		Data:     data,
	})
}

// RedirectWithFlash queues a message and answers with 303 See Other.
func RedirectWithFlash(c *gin.Context, level, message, location string) {
	AddFlash(c, level, message)
	c.Redirect(http.StatusSeeOther, location)
}
