package web

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesDefinePages(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"index.html", "post.html", "login.html", "register.html",
		"make-post.html", "about.html", "contact.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", map[string]any{
		"Status":  404,
		"Message": "<gone>",
		"Flashes": []string{"careful"},
	}))
	assert.Contains(t, buf.String(), "&lt;gone&gt;")
	assert.Contains(t, buf.String(), "careful")
}

func TestGravatar(t *testing.T) {
	// md5("test@example.com")
	want := "https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=100&r=g&d=retro"
	assert.Equal(t, want, Gravatar("  Test@Example.com "))
}

func TestStaticServesCSS(t *testing.T) {
	f, err := Static().Open("/css/site.css")
	require.NoError(t, err)
	defer f.Close()

	_, err = Static().Open("/missing.css")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
