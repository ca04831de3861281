package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Mehdi030/Verletzungsanalyse/models"
)

// PersistRun schreibt die Zeilen und Zusammenfassungen eines Laufs in die
// Datenbank. Der vorherige Stand der Tabellen wird ersetzt (Ersetzen auf
// Tabellen-, nicht auf Zeilenebene), damit Konsumenten immer genau einen
// vollständigen Lauf sehen.
func PersistRun(db *gorm.DB, result *models.RunResult) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id <> ?", result.RunID).Delete(&models.InjuryEventRow{}).Error; err != nil {
			return fmt.Errorf("alte ereigniszeilen löschen: %w", err)
		}
		if err := tx.Where("run_id <> ?", result.RunID).Delete(&models.TeamSeasonSummary{}).Error; err != nil {
			return fmt.Errorf("alte zusammenfassungen löschen: %w", err)
		}

		if len(result.Rows) > 0 {
			rows := make([]models.InjuryEventRow, len(result.Rows))
			copy(rows, result.Rows)
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("ereigniszeilen schreiben: %w", err)
			}
		}
		if len(result.Summaries) > 0 {
			summaries := make([]models.TeamSeasonSummary, len(result.Summaries))
			copy(summaries, result.Summaries)
			if err := tx.Create(&summaries).Error; err != nil {
				return fmt.Errorf("zusammenfassungen schreiben: %w", err)
			}
		}
		return nil
	})
}
