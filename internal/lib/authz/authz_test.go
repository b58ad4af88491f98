package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/billing-service/internal/models"
)

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(Actor{Role: models.RoleAdmin}))
	assert.False(t, IsAdmin(Actor{Role: models.RoleUser}))
	assert.False(t, IsAdmin(Actor{}))
}

func TestOwnerOrAdmin(t *testing.T) {
	owner := Actor{UserUID: "uid-1", Role: models.RoleUser}
	stranger := Actor{UserUID: "uid-2", Role: models.RoleUser}
	admin := Actor{UserUID: "uid-3", Role: models.RoleAdmin}

	assert.True(t, OwnerOrAdmin(owner, "uid-1"))
	assert.False(t, OwnerOrAdmin(stranger, "uid-1"))
	assert.True(t, OwnerOrAdmin(admin, "uid-1"))
}
