package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHas27Languages(t *testing.T) {
	all := All()
	assert.Len(t, all, 27)

	seen := map[string]bool{}
	for _, l := range all {
		assert.False(t, seen[l.Code], "duplicate code %s", l.Code)
		seen[l.Code] = true
		assert.NotEmpty(t, l.Name)
	}
}

func TestDirection(t *testing.T) {
	for _, code := range []string{"ar", "fa", "ur", "AR", "ar-EG"} {
		assert.Equal(t, DirRTL, Direction(code), code)
	}
	for _, code := range []string{"en", "de", "zh", "tl", "unknown"} {
		assert.Equal(t, DirLTR, Direction(code), code)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"en":    "en",
		"EN":    "en",
		"en-US": "en",
		"pt_BR": "pt",
		"fil":   "tl",
		" fr ":  "fr",
		"":      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestValidateTargets(t *testing.T) {
	got, err := ValidateTargets([]string{"ar", "fr", "AR", "de-DE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "fr", "de"}, got)

	_, err = ValidateTargets(nil)
	assert.Error(t, err)

	_, err = ValidateTargets([]string{"en", "xx"})
	assert.Error(t, err)
}
