package repository

import (
	"strings"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BusinessRepository interface {
	Create(business *model.Business) error
	BulkUpsert(businesses []model.Business, batchSize int) error
	FindByReference(referenceID string) (*model.Business, error)
	Search(query string, limit int) ([]model.Business, error)
	RefreshNewFlags(formedSince time.Time) (int64, error)
	Count() (int64, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.Business) error {
	logger.Debug("Creating business in database", map[string]interface{}{
		"reference_id":  business.ReferenceID,
		"name":          business.Name,
		"business_type": business.BusinessType,
	})

	if err := r.db.Create(business).Error; err != nil {
		logger.Error("Failed to create business in database", err, map[string]interface{}{
			"reference_id": business.ReferenceID,
			"name":         business.Name,
		})
		return err
	}

	logger.Debug("Business created in database", map[string]interface{}{
		"reference_id": business.ReferenceID,
	})
	return nil
}

// BulkUpsert inserts registry rows in batches, overwriting rows whose
// reference already exists.
func (r *businessRepository) BulkUpsert(businesses []model.Business, batchSize int) error {
	if len(businesses) == 0 {
		return nil
	}
	logger.Debug("Bulk upserting businesses in database", map[string]interface{}{
		"count":      len(businesses),
		"batch_size": batchSize,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reference_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "business_type", "address", "address2", "city", "state_code", "zip_code",
			"registered_agent", "date_formed", "last_filing_date", "status", "missing_filing", "updated_at",
		}),
	}).CreateInBatches(&businesses, batchSize).Error
	if err != nil {
		logger.Error("Failed to bulk upsert businesses in database", err, map[string]interface{}{
			"count": len(businesses),
		})
		return err
	}

	logger.Debug("Businesses upserted in database", map[string]interface{}{
		"count": len(businesses),
	})
	return nil
}

func (r *businessRepository) FindByReference(referenceID string) (*model.Business, error) {
	logger.Debug("Finding business by reference in database", map[string]interface{}{
		"reference_id": referenceID,
	})

	var business model.Business
	if err := r.db.Where("reference_id = ?", referenceID).First(&business).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find business by reference in database", err, map[string]interface{}{
				"reference_id": referenceID,
			})
		}
		return nil, err
	}

	return &business, nil
}

// Search matches query as a case-insensitive substring of the name or reference.
func (r *businessRepository) Search(query string, limit int) ([]model.Business, error) {
	logger.Debug("Searching businesses in database", map[string]interface{}{
		"query": query,
		"limit": limit,
	})

	pattern := "%" + strings.ToLower(query) + "%"
	db := r.db.Where("LOWER(name) LIKE ? OR LOWER(reference_id) LIKE ?", pattern, pattern).
		Order("name ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var businesses []model.Business
	if err := db.Find(&businesses).Error; err != nil {
		logger.Error("Failed to search businesses in database", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	logger.Debug("Businesses found in database", map[string]interface{}{
		"query": query,
		"count": len(businesses),
	})
	return businesses, nil
}

// RefreshNewFlags sets is_new for businesses formed on or after formedSince
// and clears it for the rest.
func (r *businessRepository) RefreshNewFlags(formedSince time.Time) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		marked := tx.Model(&model.Business{}).
			Where("date_formed >= ? AND is_new = ?", formedSince, false).
			Update("is_new", true)
		if marked.Error != nil {
			return marked.Error
		}

		cleared := tx.Model(&model.Business{}).
			Where("(date_formed < ? OR date_formed IS NULL) AND is_new = ?", formedSince, true).
			Update("is_new", false)
		if cleared.Error != nil {
			return cleared.Error
		}

		affected = marked.RowsAffected + cleared.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to refresh business is_new flags", err, map[string]interface{}{
			"formed_since": formedSince,
		})
		return 0, err
	}

	logger.Debug("Business is_new flags refreshed", map[string]interface{}{
		"formed_since": formedSince,
		"affected":     affected,
	})
	return affected, nil
}

func (r *businessRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Business{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
