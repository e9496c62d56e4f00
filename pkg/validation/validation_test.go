package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireNonBlank(t *testing.T) {
	assert.Nil(t, RequireNonBlank("title", "hello"))
	assert.Nil(t, RequireNonBlank("title", " padded "))

	err := RequireNonBlank("title", "   ")
	require.NotNil(t, err)
	assert.Equal(t, "title", err.Field)
	assert.Equal(t, "title: must not be blank", err.Error())

	assert.NotNil(t, RequireNonBlank("title", ""))
	assert.NotNil(t, RequireNonBlank("title", "\t\n"))
}

func TestRequireMinLength(t *testing.T) {
	assert.Nil(t, RequireMinLength("password", "12345678", 8))

	err := RequireMinLength("password", "1234567", 8)
	require.NotNil(t, err)
	assert.Equal(t, "password", err.Field)
	assert.Contains(t, err.Message, "at least 8")
}

func TestRequireMaxLength(t *testing.T) {
	assert.Nil(t, RequireMaxLength("title", "ok", 5))

	err := RequireMaxLength("title", "too long", 5)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "at most 5")
}
