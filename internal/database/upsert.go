package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compsengine/server/internal/models"
)

// UpsertProperties inserts or updates a batch of property records inside the
// caller's transaction, keyed on address.
func UpsertProperties(tx *gorm.DB, batch []*models.Property) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(batch).Error
}

// UpsertResearch writes a research record and replaces its comp rows. The
// ranked rows are a snapshot from the research pipeline, so a re-run for the
// same address supersedes earlier rows wholesale instead of merging.
func UpsertResearch(tx *gorm.DB, batch *models.ResearchBatch) error {
	record := batch.Record

	var existing models.ResearchRecord
	err := tx.Where("LOWER(address) = LOWER(?)", record.Address).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := tx.Model(&models.ResearchRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]interface{}{"city": record.City, "state": record.State}).Error; err != nil {
			return fmt.Errorf("failed to update research record: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create research record: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up research record: %w", err)
	}

	if err := tx.Where("research_record_id = ?", record.ID).
		Delete(&models.ResearchCompSale{}).Error; err != nil {
		return fmt.Errorf("failed to clear comp sales: %w", err)
	}
	if err := tx.Where("research_record_id = ?", record.ID).
		Delete(&models.ResearchCompRental{}).Error; err != nil {
		return fmt.Errorf("failed to clear comp rentals: %w", err)
	}

	for i := range batch.Sales {
		batch.Sales[i].ID = 0
		batch.Sales[i].ResearchRecordID = record.ID
	}
	for i := range batch.Rentals {
		batch.Rentals[i].ID = 0
		batch.Rentals[i].ResearchRecordID = record.ID
	}

	if len(batch.Sales) > 0 {
		if err := tx.Create(&batch.Sales).Error; err != nil {
			return fmt.Errorf("failed to insert comp sales: %w", err)
		}
	}
	if len(batch.Rentals) > 0 {
		if err := tx.Create(&batch.Rentals).Error; err != nil {
			return fmt.Errorf("failed to insert comp rentals: %w", err)
		}
	}

	return nil
}
