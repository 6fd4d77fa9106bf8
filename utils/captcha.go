package utils

import (
	"time"

	"github.com/mojocn/base64Captcha"
)

// CaptchaOptions shapes the digit challenge shown on the registration form.
type CaptchaOptions struct {
	Length int
	Width  int
	Height int
	TTL    time.Duration
}

// Captcha issues and checks single-use digit challenges.
type Captcha struct {
	driver base64Captcha.Driver
	store  base64Captcha.Store
}

// NewCaptcha builds a Captcha backed by an in-memory store. Zero options fall back to 5 digits, 120x40, 10 minutes.
func NewCaptcha(opts CaptchaOptions) *Captcha {
	if opts.Length <= 0 {
		opts.Length = 5
	}
	if opts.Width <= 0 {
		opts.Width = 120
	}
	if opts.Height <= 0 {
		opts.Height = 40
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	return &Captcha{
		driver: base64Captcha.NewDriverDigit(opts.Height, opts.Width, opts.Length, 0.7, 80),
		store:  base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, opts.TTL),
	}
}

// Generate returns the challenge id and its image as a data URI.
func (c *Captcha) Generate() (id, image string, err error) {
	id, image, _, err = base64Captcha.NewCaptcha(c.driver, c.store).Generate()
	return id, image, err
}

// Verify checks an answer. The challenge is consumed whether or not it matches.
func (c *Captcha) Verify(id, answer string) bool {
	if id == "" || answer == "" {
		return false
	}
	return c.store.Verify(id, answer, true)
}
