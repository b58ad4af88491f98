package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CompareHash(hash, "secret123"))
	assert.Error(t, CompareHash(hash, "wrong"))
}

func TestGetHash_DifferentSalts(t *testing.T) {
	first, err := GetHash("secret123")
	assert.NoError(t, err)
	second, err := GetHash("secret123")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}
