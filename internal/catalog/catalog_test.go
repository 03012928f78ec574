package catalog

import (
	"errors"
	"testing"

	"github.com/avetrovs/vitrine/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	s, ok := Lookup("services")
	require.True(t, ok)
	assert.Equal(t, "services", s.Name)

	_, ok = Lookup("users")
	assert.False(t, ok, "users is reserved, not a content collection")
}

func TestValidate_RequiredField(t *testing.T) {
	s, _ := Lookup("services")

	err := s.Validate(map[string]any{"description": "d"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	err = s.Validate(map[string]any{"title": "", "description": "d"})
	require.Error(t, err, "empty string does not satisfy a required field")

	err = s.Validate(map[string]any{"title": "t", "description": "d"})
	assert.NoError(t, err)
}

func TestValidate_Enum(t *testing.T) {
	s, _ := Lookup("testimonials")

	err := s.Validate(map[string]any{"author": "a", "text": "t", "rating": "9"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	err = s.Validate(map[string]any{"author": "a", "text": "t", "rating": "4"})
	assert.NoError(t, err)
}

func TestValidate_UndeclaredFieldsAllowed(t *testing.T) {
	s, _ := Lookup("awards")
	err := s.Validate(map[string]any{"name": "n", "year": "2024", "extra": 1})
	assert.NoError(t, err)
}

func TestApplyDefaults(t *testing.T) {
	s, _ := Lookup("products")

	out := s.ApplyDefaults(map[string]any{"name": "rake", "price": 10})
	assert.Equal(t, "in-stock", out["availability"])

	out = s.ApplyDefaults(map[string]any{"name": "rake", "price": 10, "availability": "preorder"})
	assert.Equal(t, "preorder", out["availability"])
}

func TestNames_MatchesCollections(t *testing.T) {
	names := Names()
	require.Len(t, names, len(Collections))
	assert.Contains(t, names, "services")
	assert.Contains(t, names, "contacts")
}
