package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// ErrUnparsableRecord markiert einen einzelnen Eintrag, dessen Datumsfelder
// nicht lesbar sind. Der Eintrag wird verworfen und geloggt, der Rest des
// Spielers bleibt unberührt.
var ErrUnparsableRecord = errors.New("verletzungseintrag nicht parsebar")

// dateLayouts sind die bekannten Datumsformate der Quellen: Transfermarkt
// schreibt "02.01.2006", Sofascore ISO, FBref "Jan 2, 2006".
var dateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.06",
}

// openEndMarkers sind die Schreibweisen der Quellen für "noch verletzt". Ein
// offenes Ende bleibt offen und wird nicht auf "heute" gesetzt.
var openEndMarkers = map[string]bool{
	"":              true,
	"-":             true,
	"?":             true,
	"ongoing":       true,
	"unknown":       true,
	"unbekannt":     true,
	"offen":         true,
	"noch verletzt": true,
}

var firstNumber = regexp.MustCompile(`-?\d+`)

// categoryKeywords bildet Freitext-Verletzungen auf die feste Taxonomie ab.
// Deutsche und englische Begriffe, da die Quellen gemischt berichten.
var categoryKeywords = []struct {
	category models.InjuryCategory
	words    []string
}{
	{models.CategoryMuscular, []string{"muskel", "faser", "zerrung", "muscle", "hamstring", "thigh", "oberschenkel", "adduktor", "adductor", "wade", "calf", "strain", "leiste", "groin"}},
	{models.CategoryKnee, []string{"knie", "kreuzband", "meniskus", "knee", "acl", "meniscus", "patella"}},
	{models.CategoryAnkle, []string{"sprunggelenk", "knöchel", "knoechel", "ankle", "syndesmose", "syndesmosis"}},
	{models.CategoryUpperBody, []string{"schulter", "shoulder", "arm", "hand", "ellenbogen", "elbow", "rippe", "rib", "handgelenk", "wrist"}},
	{models.CategoryHead, []string{"kopf", "gehirn", "concussion", "schädel", "head", "gesicht", "face"}},
}

// RecordNormalizer überführt rohe Quellen-Einträge in die kanonische Form:
// Identitäts-Keys, Kalenderintervall, Taxonomie-Kategorie, Ganzzahlen.
// Quellen-spezifische Formate kommen hier nicht vorbei.
type RecordNormalizer struct {
	Logger     *zap.Logger
	Identities *IdentityRegistry
}

// NewRecordNormalizer erstellt einen neuen RecordNormalizer, der Identitäten
// in der übergebenen Registry sammelt.
func NewRecordNormalizer(logger *zap.Logger, identities *IdentityRegistry) *RecordNormalizer {
	return &RecordNormalizer{Logger: logger, Identities: identities}
}

// Normalize wandelt einen rohen Eintrag um. Unlesbare Datumsangaben führen zu
// ErrUnparsableRecord; unlesbare Zahlenfelder werden still zu 0, damit nicht
// der ganze Eintrag verloren geht.
func (n *RecordNormalizer) Normalize(raw models.RawInjuryRecord) (models.NormalizedInjuryRecord, error) {
	var rec models.NormalizedInjuryRecord

	start, err := parseDate(raw.StartText)
	if err != nil {
		n.Logger.Warn("Eintrag verworfen: Startdatum nicht lesbar",
			zap.String("source", raw.Source), zap.String("player", raw.PlayerName), zap.String("raw", raw.StartText))
		return rec, fmt.Errorf("%w: startdatum %q (quelle %s, spieler %s)", ErrUnparsableRecord, raw.StartText, raw.Source, raw.PlayerName)
	}

	interval := models.Interval{Start: start}
	if !isOpenEnd(raw.EndText) {
		end, err := parseDate(raw.EndText)
		if err != nil {
			n.Logger.Warn("Eintrag verworfen: Enddatum nicht lesbar",
				zap.String("source", raw.Source), zap.String("player", raw.PlayerName), zap.String("raw", raw.EndText))
			return rec, fmt.Errorf("%w: enddatum %q (quelle %s, spieler %s)", ErrUnparsableRecord, raw.EndText, raw.Source, raw.PlayerName)
		}
		if end.Before(start) {
			n.Logger.Warn("Eintrag verworfen: Ende liegt vor Beginn",
				zap.String("source", raw.Source), zap.String("player", raw.PlayerName),
				zap.String("start", raw.StartText), zap.String("end", raw.EndText))
			return rec, fmt.Errorf("%w: intervall %q..%q rückwärts (quelle %s, spieler %s)", ErrUnparsableRecord, raw.StartText, raw.EndText, raw.Source, raw.PlayerName)
		}
		interval.End = &end
	}

	rec = models.NormalizedInjuryRecord{
		PlayerKey:   n.Identities.Observe(raw.PlayerName),
		TeamKey:     n.Identities.Observe(raw.TeamName),
		Category:    ClassifyInjury(raw.InjuryText),
		Interval:    interval,
		GamesMissed: coerceCount(raw.GamesText),
		DaysMissed:  coerceCount(raw.DaysText),
		Source:      raw.Source,
	}
	if rec.DaysMissed == 0 {
		rec.DaysMissed = interval.Days()
	}
	return rec, nil
}

// ClassifyInjury ordnet einen Verletzungs-Freitext der Taxonomie zu. Leerer
// Text oder "keine Verletzung" ergibt None, unbekannte Begriffe Other.
func ClassifyInjury(text string) models.InjuryCategory {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" || strings.Contains(s, "keine verletzung") || s == "keine" || s == "none" || strings.Contains(s, "no injury") {
		return models.CategoryNone
	}
	for _, group := range categoryKeywords {
		for _, w := range group.words {
			if strings.Contains(s, w) {
				return group.category
			}
		}
	}
	return models.CategoryOther
}

func parseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("leeres datum")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unbekanntes datumsformat %q", s)
}

func isOpenEnd(text string) bool {
	return openEndMarkers[strings.ToLower(strings.TrimSpace(text))]
}

// coerceCount liest die erste Ganzzahl aus einem Zählfeld ("3 Spiele" → 3).
// Unlesbares oder Negatives wird zu 0.
func coerceCount(text string) int {
	match := firstNumber.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
