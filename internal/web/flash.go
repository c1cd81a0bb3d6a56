package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "flash"
	flashContextKey = "web.flashes"
)

const (
	categorySuccess = "success"
	categoryDanger  = "danger"
	categoryInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a message for the page the client renders after a redirect.
func addFlash(c *gin.Context, category, message string) {
	var pending []Flash
	if v, ok := c.Get(flashContextKey); ok {
		pending = v.([]Flash)
	} else {
		pending = readFlashes(c)
	}
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)

	b, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(b), 0, "/", "", false, true)
}

// popFlashes returns the queued messages and clears the cookie.
func popFlashes(c *gin.Context) []Flash {
	flashes := readFlashes(c)
	if len(flashes) > 0 {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}
	return flashes
}

func readFlashes(c *gin.Context) []Flash {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}
