package services

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// umlautReplacer schreibt deutsche Umlaute aus, bevor die restlichen
// Diakritika entfernt werden. Dadurch landen "Müller" und die
// ASCII-Schreibweise "Mueller" auf demselben Key.
var umlautReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// diacriticStripper entfernt kombinierende Zeichen nach NFD-Zerlegung
// (é → e, ć → c).
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName bildet einen Anzeigenamen deterministisch auf seinen
// kanonischen Identitäts-Key ab: Kleinbuchstaben, Umlaute ausgeschrieben,
// Diakritika entfernt, Interpunktion bis auf Binnen-Bindestriche verworfen,
// Leerraum kollabiert. Die Funktion ist idempotent.
func NormalizeName(displayName string) string {
	s := strings.ToLower(strings.TrimSpace(displayName))
	s = umlautReplacer.Replace(s)
	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r == '-':
			b.WriteByte('-')
		}
		// alle übrige Interpunktion fällt weg
	}

	fields := strings.Fields(b.String())
	for i, f := range fields {
		// Bindestriche nur im Wortinneren behalten
		fields[i] = strings.Trim(f, "-")
	}
	out := strings.Join(fields, " ")
	return strings.TrimSpace(out)
}

// IdentityRegistry führt die Zuordnung von kanonischen Keys zu allen im Lauf
// beobachteten Schreibweisen. Die Varianten dienen nur dem Reporting, nie dem
// Matching. Lebensdauer: ein Pipeline-Lauf.
type IdentityRegistry struct {
	mu       sync.Mutex
	variants map[string][]string
}

// NewIdentityRegistry erstellt eine leere Registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{variants: make(map[string][]string)}
}

// Observe normalisiert einen Anzeigenamen und merkt sich die Schreibweise als
// Variante des Keys.
func (r *IdentityRegistry) Observe(displayName string) string {
	key := NormalizeName(displayName)
	if key == "" {
		return key
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.variants[key] {
		if v == displayName {
			return key
		}
	}
	r.variants[key] = append(r.variants[key], displayName)
	sort.Strings(r.variants[key])
	return key
}

// Variants gibt alle beobachteten Schreibweisen eines Keys zurück.
func (r *IdentityRegistry) Variants(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.variants[key]))
	copy(out, r.variants[key])
	return out
}

// Warnings meldet Keys, deren Varianten sich paarweise stark unterscheiden
// (Jaro-Winkler-Ähnlichkeit unter minSimilarity). Das deutet auf zwei real
// verschiedene Namen hin, die zufällig identisch normalisieren. Es wird nur
// gewarnt, nie automatisch getrennt.
func (r *IdentityRegistry) Warnings(minSimilarity float64) []models.IdentityWarning {
	r.mu.Lock()
	defer r.mu.Unlock()

	var warnings []models.IdentityWarning
	keys := make([]string, 0, len(r.variants))
	for k := range r.variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vars := r.variants[key]
		if len(vars) < 2 {
			continue
		}
		lowest := 1.0
		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				sim := matchr.JaroWinkler(strings.ToLower(vars[i]), strings.ToLower(vars[j]), false)
				if sim < lowest {
					lowest = sim
				}
			}
		}
		if lowest < minSimilarity {
			warnings = append(warnings, models.IdentityWarning{
				Key:        key,
				Variants:   append([]string(nil), vars...),
				Similarity: lowest,
			})
		}
	}
	return warnings
}
