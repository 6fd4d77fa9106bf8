package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/middleware"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

type registerForm struct {
	Email         string `form:"email" binding:"required,email,max=100"`
	Password      string `form:"password" binding:"required,min=8"`
	Name          string `form:"name" binding:"required,max=100"`
	CaptchaID     string `form:"captcha_id"`
	CaptchaAnswer string `form:"captcha_answer"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

// AuthController handles registration, login and logout.
type AuthController struct {
	users    *services.UserService
	sessions middleware.Sessions
	view     *View
	captcha  *utils.Captcha
}

// NewAuthController creates a new AuthController instance.
// A nil captcha disables the registration challenge.
func NewAuthController(users *services.UserService, sessions middleware.Sessions, view *View, captcha *utils.Captcha) *AuthController {
	return &AuthController{users: users, sessions: sessions, view: view, captcha: captcha}
}

// RegisterPage shows the registration form.
func (a *AuthController) RegisterPage(ctx *gin.Context) {
	a.renderRegister(ctx, http.StatusOK, registerForm{})
}

// Register creates an account and logs the new user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var form registerForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		a.renderRegister(ctx, http.StatusBadRequest, form)
		return
	}
	if a.captcha != nil && !a.captcha.Verify(form.CaptchaID, strings.TrimSpace(form.CaptchaAnswer)) {
		utils.SetFlash(ctx, "The verification code is incorrect. Please try again.")
		a.renderRegister(ctx, http.StatusBadRequest, form)
		return
	}

	user, err := a.users.Register(ctx.Request.Context(), form.Email, form.Password, utils.StripTags(form.Name))
	switch {
	case errors.Is(err, services.ErrDuplicateEmail):
		utils.SetFlash(ctx, "This email already exists, log in instead")
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	case errors.Is(err, services.ErrValidation):
		utils.SetFlash(ctx, "Email, password and name are required.")
		a.renderRegister(ctx, http.StatusBadRequest, form)
		return
	case err != nil:
		a.view.Error(ctx, err)
		return
	}

	if err := a.sessions.Start(ctx, user); err != nil {
		a.view.Error(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

// LoginPage shows the login form.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	a.view.Page(ctx, http.StatusOK, "login.html", gin.H{"Title": "Log In"})
}

// Login checks credentials and starts a session.
func (a *AuthController) Login(ctx *gin.Context) {
	var form loginForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		a.renderLogin(ctx, http.StatusBadRequest, form.Email)
		return
	}

	user, err := a.users.Login(ctx.Request.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, services.ErrEmailNotFound):
		utils.SetFlash(ctx, "This email does not exist. Please try again")
		a.renderLogin(ctx, http.StatusUnauthorized, form.Email)
		return
	case errors.Is(err, services.ErrWrongPassword):
		utils.SetFlash(ctx, "Please check your password and try again")
		a.renderLogin(ctx, http.StatusUnauthorized, form.Email)
		return
	case err != nil:
		a.view.Error(ctx, err)
		return
	}

	if err := a.sessions.Start(ctx, user); err != nil {
		a.view.Error(ctx, err)
		return
	}
	utils.Sugar.Infow("user logged in", "user_id", user.ID, "ip", ctx.ClientIP())
	ctx.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the caller's session. It is a no-op for anonymous callers.
func (a *AuthController) Logout(ctx *gin.Context) {
	a.sessions.End(ctx)
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (a *AuthController) renderLogin(ctx *gin.Context, status int, email string) {
	a.view.Page(ctx, status, "login.html", gin.H{"Title": "Log In", "Email": email})
}

func (a *AuthController) renderRegister(ctx *gin.Context, status int, form registerForm) {
	data := gin.H{"Title": "Register", "Email": form.Email, "Name": form.Name}
	if a.captcha != nil {
		id, img, err := a.captcha.Generate()
		if err != nil {
			a.view.Error(ctx, err)
			return
		}
		data["CaptchaID"] = id
		// data: URIs are filtered by html/template unless marked safe
		data["CaptchaImage"] = template.URL(img)
	}
	a.view.Page(ctx, status, "register.html", data)
}
