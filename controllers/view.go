package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// View renders HTML pages with the per-request layout data every template expects.
type View struct {
	auth services.Authorizer
}

// NewView creates a View that asks auth whether the caller sees admin controls.
func NewView(auth services.Authorizer) *View {
	return &View{auth: auth}
}

// Page renders template name with data plus the layout keys.
func (v *View) Page(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	identity := middleware.CurrentIdentity(ctx)
	data["LoggedIn"] = identity.Authenticated()
	data["UserName"] = identity.Name
	data["Admin"] = v.auth.IsAdmin(identity)
	data["Flashes"] = utils.PopFlashes(ctx)
	data["CSRF"] = ctx.GetString(middleware.ContextCSRFKey)
	ctx.HTML(status, name, data)
}

// Fail renders the error page.
func (v *View) Fail(ctx *gin.Context, status int, message string) {
	v.Page(ctx, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
	ctx.Abort()
}

// NotFound renders the 404 page.
func (v *View) NotFound(ctx *gin.Context) {
	v.Fail(ctx, http.StatusNotFound, "The page you were looking for does not exist.")
}

// Error maps a service error to its response.
func (v *View) Error(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		v.Fail(ctx, http.StatusForbidden, "You are not allowed to do that.")
	case errors.Is(err, services.ErrNotFound):
		v.NotFound(ctx)
	case errors.Is(err, services.ErrUnauthenticated):
		utils.SetFlash(ctx, "Please log in to continue")
		ctx.Redirect(http.StatusSeeOther, "/login")
		ctx.Abort()
	case errors.Is(err, services.ErrDelivery):
		v.Fail(ctx, http.StatusBadGateway, "Your message could not be sent. Please try again later.")
	default:
		utils.Sugar.Errorw("request failed",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"request_id", ctx.GetString(utils.RequestIDKey),
			"error", err,
		)
		v.Fail(ctx, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

var fieldLabels = map[string]string{
	"Email":    "Email",
	"Password": "Password",
	"Name":     "Name",
	"Title":    "Blog post title",
	"Subtitle": "Subtitle",
	"ImgURL":   "Blog image URL",
	"Body":     "Blog content",
	"Comment":  "Comment",
	"Message":  "Message",
}

// validationMessages turns binding errors into notices for the form page.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Please check the form and try again."}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, label+" is required.")
		case "email":
			msgs = append(msgs, label+" must be a valid email address.")
		case "url":
			msgs = append(msgs, label+" must be a valid URL.")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters.", label, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters.", label, fe.Param()))
		default:
			msgs = append(msgs, label+" is invalid.")
		}
	}
	return msgs
}

func flashAll(ctx *gin.Context, msgs []string) {
	for _, m := range msgs {
		utils.SetFlash(ctx, m)
	}
}
