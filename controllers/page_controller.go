package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

// ContactNotifier relays contact-form messages; *services.ContactService implements it.
type ContactNotifier interface {
	Send(ctx context.Context, msg services.ContactMessage) error
}

type contactForm struct {
	Name    string `form:"name" binding:"required,max=100"`
	Email   string `form:"email" binding:"required,email"`
	Phone   string `form:"phone" binding:"max=40"`
	Message string `form:"message" binding:"required,max=5000"`
}

// PageController serves the about and contact pages.
type PageController struct {
	contact ContactNotifier
	view    *View
}

// NewPageController creates a new PageController instance.
func NewPageController(contact ContactNotifier, view *View) *PageController {
	return &PageController{contact: contact, view: view}
}

// About renders the about page.
func (p *PageController) About(ctx *gin.Context) {
	p.view.Page(ctx, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// ContactPage renders the contact form.
func (p *PageController) ContactPage(ctx *gin.Context) {
	p.renderContact(ctx, http.StatusOK, contactForm{}, false)
}

// Contact relays the submitted message to the site operator.
func (p *PageController) Contact(ctx *gin.Context) {
	var form contactForm
	if err := ctx.ShouldBind(&form); err != nil {
		flashAll(ctx, validationMessages(err))
		p.renderContact(ctx, http.StatusBadRequest, form, false)
		return
	}

	err := p.contact.Send(ctx.Request.Context(), services.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	})
	if err != nil {
		utils.Sugar.Warnw("contact form not delivered", "request_id", ctx.GetString(utils.RequestIDKey), "error", err)
		utils.SetFlash(ctx, "Your message could not be sent. Please try again later.")
		p.renderContact(ctx, http.StatusBadGateway, form, false)
		return
	}
	p.renderContact(ctx, http.StatusOK, form, true)
}

func (p *PageController) renderContact(ctx *gin.Context, status int, form contactForm, sent bool) {
	p.view.Page(ctx, status, "contact.html", gin.H{"Title": "Contact", "Form": form, "Sent": sent})
}
