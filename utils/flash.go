package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// SetFlash queues a one-shot notice shown on the next rendered page.
func SetFlash(ctx *gin.Context, message string) {
	msgs := append(peekFlashes(ctx), message)
	b, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	ctx.Set(flashCookie, msgs)
}

// PopFlashes returns queued notices and clears them.
func PopFlashes(ctx *gin.Context) []string {
	msgs := peekFlashes(ctx)
	if len(msgs) > 0 {
		http.SetCookie(ctx.Writer, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
		ctx.Set(flashCookie, []string(nil))
	}
	return msgs
}

func peekFlashes(ctx *gin.Context) []string {
	if v, ok := ctx.Get(flashCookie); ok {
		msgs, _ := v.([]string)
		return msgs
	}
	raw, err := ctx.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []string
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil
	}
	return msgs
}
