package models

// InjuryCategory ist die feste Verletzungs-Taxonomie, auf die alle
// Freitext-Beschreibungen der Quellen abgebildet werden.
type InjuryCategory string

const (
	CategoryMuscular  InjuryCategory = "Muscular"
	CategoryKnee      InjuryCategory = "Knee"
	CategoryAnkle     InjuryCategory = "Ankle"
	CategoryUpperBody InjuryCategory = "UpperBody"
	CategoryHead      InjuryCategory = "Head"
	CategoryOther     InjuryCategory = "Other"
	CategoryNone      InjuryCategory = "None"
)

// Compatible meldet, ob zwei Kategorien beim Zusammenführen als gleichwertig
// gelten. "Other" und "None" sind unbekannt-kompatibel zu allem.
func (c InjuryCategory) Compatible(other InjuryCategory) bool {
	if c == other {
		return true
	}
	if c == CategoryOther || c == CategoryNone {
		return true
	}
	if other == CategoryOther || other == CategoryNone {
		return true
	}
	return false
}

// Specificity bevorzugt beim Merge eine konkrete Kategorie gegenüber
// "Other"/"None".
func (c InjuryCategory) Specificity() int {
	switch c {
	case CategoryNone:
		return 0
	case CategoryOther:
		return 1
	default:
		return 2
	}
}
