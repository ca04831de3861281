package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Müller", "mueller"},
		{"Mueller", "mueller"},
		{"  Thomas   Müller ", "thomas mueller"},
		{"Çalhanoğlu", "calhanoglu"},
		{"N'Golo Kanté", "ngolo kante"},
		{"Karl-Heinz Rummenigge", "karl-heinz rummenigge"},
		{"van Dijk, Virgil", "van dijk virgil"},
		{"Großkreutz", "grosskreutz"},
		{"- Foo -", "foo"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	names := []string{"Müller", "Çalhanoğlu", "N'Golo Kanté", "Karl-Heinz Rummenigge", "1. FC Köln"}
	for _, name := range names {
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once), "normalize(normalize(%q))", name)
	}
}

func TestIdentityRegistryVariants(t *testing.T) {
	reg := NewIdentityRegistry()

	k1 := reg.Observe("Müller")
	k2 := reg.Observe("Mueller")
	k3 := reg.Observe("Müller") // Duplikat

	require.Equal(t, k1, k2)
	require.Equal(t, k1, k3)
	assert.Equal(t, []string{"Mueller", "Müller"}, reg.Variants(k1))
}

func TestIdentityRegistryWarnings(t *testing.T) {
	reg := NewIdentityRegistry()
	reg.Observe("Müller")
	reg.Observe("Mueller")

	// Nahezu identische Schreibweisen lösen bei üblicher Schwelle keine
	// Warnung aus.
	assert.Empty(t, reg.Warnings(0.8))

	// Mit praktisch unerreichbarer Schwelle wird derselbe Key gemeldet:
	// das Warn-Kriterium greift, sobald Varianten unter der Schwelle liegen.
	warnings := reg.Warnings(0.999)
	require.Len(t, warnings, 1)
	assert.Equal(t, "mueller", warnings[0].Key)
	assert.Equal(t, []string{"Mueller", "Müller"}, warnings[0].Variants)
	assert.Less(t, warnings[0].Similarity, 0.999)
}
