package repository

import (
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
)

type ServiceDetailRepository interface {
	// Upsert creates the detail row for its request, or overwrites the existing one in place.
	Upsert(detail model.ServiceDetail) error
	// FindByComplianceRequestID loads into dest the detail row owned by requestID.
	FindByComplianceRequestID(dest model.ServiceDetail, requestID uint) error
}

type serviceDetailRepository struct {
	db *gorm.DB
}

func NewServiceDetailRepository(db *gorm.DB) ServiceDetailRepository {
	return &serviceDetailRepository{db: db}
}

func (r *serviceDetailRepository) Upsert(detail model.ServiceDetail) error {
	base := detail.Base()
	fields := map[string]interface{}{
		"request_type":          detail.ServiceType(),
		"compliance_request_id": base.ComplianceRequestID,
	}
	logger.Debug("Upserting service detail in database", fields)

	base.ID = 0
	var existing struct {
		ID        uint
		CreatedAt time.Time
	}
	if err := r.db.Model(detail).
		Select("id", "created_at").
		Where("compliance_request_id = ?", base.ComplianceRequestID).
		Limit(1).
		Scan(&existing).Error; err != nil {
		logger.Error("Failed to look up existing service detail", err, fields)
		return err
	}

	var err error
	if existing.ID != 0 {
		base.ID = existing.ID
		base.CreatedAt = existing.CreatedAt
		err = r.db.Omit("ComplianceRequest").Save(detail).Error
	} else {
		err = r.db.Omit("ComplianceRequest").Create(detail).Error
	}
	if err != nil {
		logger.Error("Failed to upsert service detail in database", err, fields)
		return err
	}

	logger.Debug("Service detail upserted in database", map[string]interface{}{
		"request_type":          detail.ServiceType(),
		"compliance_request_id": base.ComplianceRequestID,
		"detail_id":             base.ID,
		"updated":               existing.ID != 0,
	})
	return nil
}

func (r *serviceDetailRepository) FindByComplianceRequestID(dest model.ServiceDetail, requestID uint) error {
	if err := r.db.Where("compliance_request_id = ?", requestID).First(dest).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find service detail in database", err, map[string]interface{}{
				"request_type":          dest.ServiceType(),
				"compliance_request_id": requestID,
			})
		}
		return err
	}
	return nil
}
