// File: /utils/flash.go
package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	FlashCookie = "flash"

	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
	FlashInfo    = "info"

	pendingFlashKey = "pending_flashes"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AddFlash queues a message for the next page. Messages added during the
// same request accumulate.
func AddFlash(c *gin.Context, level, message string) {
	pending := pendingFlashes(c)
	pending = append(pending, Flash{Level: level, Message: message})
	c.Set(pendingFlashKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	writeFlashCookie(c, base64.RawURLEncoding.EncodeToString(raw), 0)
}

// ConsumeFlashes returns the messages carried by the request and clears them.
func ConsumeFlashes(c *gin.Context) []Flash {
	flashes := pendingFlashes(c)
	if len(flashes) > 0 {
		writeFlashCookie(c, "", -1)
	}
	c.Set(pendingFlashKey, []Flash{})
	return flashes
}

func pendingFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(pendingFlashKey); ok {
		return v.([]Flash)
	}
	return readFlashCookie(c)
}

func readFlashCookie(c *gin.Context) []Flash {
	value, err := c.Cookie(FlashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

// writeFlashCookie replaces any flash cookie already set on this response.
func writeFlashCookie(c *gin.Context, value string, maxAge int) {
	header := c.Writer.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, FlashCookie+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, value, maxAge, "/", "", false, true)
}
