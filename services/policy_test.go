package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cppla/blog/models"
)

func TestPolicy(t *testing.T) {
	p := Policy{AdminMaxUserID: 2}

	tests := []struct {
		name  string
		id    models.Identity
		admin bool
	}{
		{"anonymous", models.Anonymous, false},
		{"first user", models.Identity{ID: 1, Name: "Ann"}, true},
		{"second user", models.Identity{ID: 2, Name: "Bob"}, true},
		{"third user", models.Identity{ID: 3, Name: "Cat"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, p.IsAdmin(tt.id))
			if tt.admin {
				assert.NoError(t, p.RequireAdmin(tt.id))
			} else {
				assert.ErrorIs(t, p.RequireAdmin(tt.id), ErrForbidden)
			}
		})
	}
}

func TestPolicyIsPerIdentity(t *testing.T) {
	p := Policy{AdminMaxUserID: 2}
	admin := models.Identity{ID: 1}
	visitor := models.Identity{ID: 7}

	// an admin decision for one caller never carries over to the next
	assert.True(t, p.IsAdmin(admin))
	assert.False(t, p.IsAdmin(visitor))
	assert.True(t, p.IsAdmin(admin))
}
