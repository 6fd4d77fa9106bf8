package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

const (
	// ContextIdentityKey stores the models.Identity resolved for the request.
	ContextIdentityKey = "identity"
	// SessionCookie carries the signed session token.
	SessionCookie = "session"
)

// IdentityLoader resolves a user id from a session token to a stored user.
type IdentityLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// Sessions issues, reads and clears cookie sessions.
type Sessions struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// LoadIdentity resolves the caller of every request from its own session cookie.
// It never rejects: requests without a valid session run as models.Anonymous.
func (s Sessions) LoadIdentity(users IdentityLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity := models.Anonymous
		if raw, err := ctx.Cookie(SessionCookie); err == nil && raw != "" {
			claims, err := utils.ParseToken(s.Secret, raw)
			switch {
			case err != nil:
				utils.Sugar.Debugw("ignoring invalid session token", "error", err)
			case utils.IsTokenRevoked(claims.ID):
				utils.Sugar.Debugw("ignoring revoked session token", "user_id", claims.UserID)
			default:
				if user, err := users.Get(ctx.Request.Context(), claims.UserID); err == nil {
					identity = user.Identity()
				} else {
					utils.Sugar.Debugw("session user not loaded", "user_id", claims.UserID, "error", err)
				}
			}
		}
		ctx.Set(ContextIdentityKey, identity)
		ctx.Next()
	}
}

// Start logs user in by issuing a session cookie.
func (s Sessions) Start(ctx *gin.Context, user *models.User) error {
	token, err := utils.GenerateToken(s.Secret, user.ID, user.Name, s.TTL)
	if err != nil {
		return err
	}
	s.setCookie(ctx, token, int(s.TTL/time.Second))
	ctx.Set(ContextIdentityKey, user.Identity())
	return nil
}

// End clears the session cookie and revokes its token. Safe to call without a session.
func (s Sessions) End(ctx *gin.Context) {
	if raw, err := ctx.Cookie(SessionCookie); err == nil && raw != "" {
		if claims, err := utils.ParseToken(s.Secret, raw); err == nil && claims.ExpiresAt != nil {
			utils.RevokeToken(claims.ID, claims.ExpiresAt.Time)
		}
	}
	s.setCookie(ctx, "", -1)
	ctx.Set(ContextIdentityKey, models.Anonymous)
}

func (s Sessions) setCookie(ctx *gin.Context, value string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentIdentity returns the identity LoadIdentity stored for this request.
func CurrentIdentity(ctx *gin.Context) models.Identity {
	if v, ok := ctx.Get(ContextIdentityKey); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Anonymous
}

// AuthRequired sends anonymous callers to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !CurrentIdentity(ctx).Authenticated() {
			utils.SetFlash(ctx, "Please log in to continue")
			ctx.Redirect(http.StatusSeeOther, "/login")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
