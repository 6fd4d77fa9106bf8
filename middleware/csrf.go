package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CSRFCookie holds the per-browser form token.
	CSRFCookie = "csrf_token"
	// CSRFField is the hidden form field echoing the token.
	CSRFField = "csrf_token"
	// ContextCSRFKey exposes the token to templates.
	ContextCSRFKey = "csrf_token"
)

// CSRF protects state-changing requests with a double-submit token.
func CSRF(secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(CSRFCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
			http.SetCookie(ctx.Writer, &http.Cookie{
				Name:     CSRFCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx.Set(ContextCSRFKey, token)

		switch ctx.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			sent := ctx.PostForm(CSRFField)
			if sent == "" {
				sent = ctx.GetHeader("X-CSRF-Token")
			}
			if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				ctx.HTML(http.StatusForbidden, "error.html", gin.H{
					"Status":  http.StatusForbidden,
					"Message": "The form has expired. Please reload the page and try again.",
				})
				ctx.Abort()
				return
			}
		}
		ctx.Next()
	}
}
