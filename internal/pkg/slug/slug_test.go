package slug

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Basic T-Shirt", "basic-t-shirt"},
		{"collapses whitespace and punctuation", "Ribbed  Knit -- Sweater!!", "ribbed-knit-sweater"},
		{"folds diacritics", "Chaqueta Acolchada Niño", "chaqueta-acolchada-nino"},
		{"croatian characters", "Džemper šareni", "dzemper-sareni"},
		{"trims edges", "  --Wide Leg Jeans--  ", "wide-leg-jeans"},
		{"digits preserved", "501 Original Fit", "501-original-fit"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}

func TestUnique(t *testing.T) {
	t.Run("returns base when free", func(t *testing.T) {
		got, err := Unique("foo", func(s string) (bool, error) { return false, nil })
		require.NoError(t, err)
		assert.Equal(t, "foo", got)
	})

	t.Run("appends incrementing suffix on collision", func(t *testing.T) {
		taken := map[string]bool{"foo": true, "foo-1": true}
		got, err := Unique("foo", func(s string) (bool, error) { return taken[s], nil })
		require.NoError(t, err)
		assert.Equal(t, "foo-2", got)
	})

	t.Run("propagates lookup errors", func(t *testing.T) {
		_, err := Unique("foo", func(s string) (bool, error) { return false, fmt.Errorf("db gone") })
		assert.Error(t, err)
	})
}
