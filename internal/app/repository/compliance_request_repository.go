package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrStaleRequests is returned when a bulk update matched fewer rows than ids given.
var ErrStaleRequests = errors.New("one or more requests changed concurrently")

// PaymentFinalization is written onto every request of a paid checkout.
type PaymentFinalization struct {
	OrderReference      string
	TransactionID       string
	PaidAt              time.Time
	AgreesToTerms       bool
	ClientSignatureText string
}

// RequestFilter drives the back-office request list.
type RequestFilter struct {
	RequestType model.RequestType
	Status      model.RequestStatus
	Search      string
	Limit       int
	Offset      int
}

type ComplianceRequestRepository interface {
	CreateBatch(requests []model.ComplianceRequest) error
	FindByID(id uint) (*model.ComplianceRequest, error)
	FindByIDs(ids []uint) ([]model.ComplianceRequest, error)
	FindByBusinessAndStatuses(businessRef string, types []model.RequestType, statuses []model.RequestStatus) ([]model.ComplianceRequest, error)
	Update(request *model.ComplianceRequest) error
	UpdateStatusForIDs(ids []uint, status model.RequestStatus) (int64, error)
	FinalizePayment(ids []uint, fin PaymentFinalization) error
	List(filter RequestFilter) ([]model.ComplianceRequest, int64, error)
	FindPaidBetween(from, to time.Time) ([]model.ComplianceRequest, error)
}

type complianceRequestRepository struct {
	db *gorm.DB
}

func NewComplianceRequestRepository(db *gorm.DB) ComplianceRequestRepository {
	return &complianceRequestRepository{db: db}
}

// CreateBatch inserts all requests in one statement.
func (r *complianceRequestRepository) CreateBatch(requests []model.ComplianceRequest) error {
	if len(requests) == 0 {
		return nil
	}
	logger.Debug("Creating compliance requests in database", map[string]interface{}{
		"business_reference_id": requests[0].BusinessReferenceID,
		"count":                 len(requests),
	})

	if err := r.db.Create(&requests).Error; err != nil {
		logger.Error("Failed to create compliance requests in database", err, map[string]interface{}{
			"business_reference_id": requests[0].BusinessReferenceID,
			"count":                 len(requests),
		})
		return err
	}

	logger.Debug("Compliance requests created in database", map[string]interface{}{
		"business_reference_id": requests[0].BusinessReferenceID,
		"count":                 len(requests),
	})
	return nil
}

func (r *complianceRequestRepository) FindByID(id uint) (*model.ComplianceRequest, error) {
	logger.Debug("Finding compliance request by ID in database", map[string]interface{}{
		"request_id": id,
	})

	var request model.ComplianceRequest
	if err := r.db.Preload("Business").First(&request, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find compliance request by ID in database", err, map[string]interface{}{
				"request_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Compliance request found in database", map[string]interface{}{
		"request_id":   request.ID,
		"request_type": request.RequestType,
		"status":       request.Status,
	})
	return &request, nil
}

// FindByIDs returns the requests ordered by id.
func (r *complianceRequestRepository) FindByIDs(ids []uint) ([]model.ComplianceRequest, error) {
	var requests []model.ComplianceRequest
	if len(ids) == 0 {
		return requests, nil
	}

	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&requests).Error; err != nil {
		logger.Error("Failed to find compliance requests by IDs in database", err, map[string]interface{}{
			"request_ids": ids,
		})
		return nil, err
	}
	return requests, nil
}

// FindByBusinessAndStatuses filters a business's requests by status and,
// when types is non-empty, by request type. Newest first.
func (r *complianceRequestRepository) FindByBusinessAndStatuses(businessRef string, types []model.RequestType, statuses []model.RequestStatus) ([]model.ComplianceRequest, error) {
	logger.Debug("Finding compliance requests by business and status in database", map[string]interface{}{
		"business_reference_id": businessRef,
		"request_types":         types,
		"statuses":              statuses,
	})

	db := r.db.Where("business_reference_id = ?", businessRef)
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	if len(types) > 0 {
		db = db.Where("request_type IN ?", types)
	}

	var requests []model.ComplianceRequest
	if err := db.Order("created_at DESC").Order("id DESC").Find(&requests).Error; err != nil {
		logger.Error("Failed to find compliance requests by business in database", err, map[string]interface{}{
			"business_reference_id": businessRef,
		})
		return nil, err
	}

	logger.Debug("Compliance requests found by business in database", map[string]interface{}{
		"business_reference_id": businessRef,
		"count":                 len(requests),
	})
	return requests, nil
}

func (r *complianceRequestRepository) Update(request *model.ComplianceRequest) error {
	logger.Debug("Updating compliance request in database", map[string]interface{}{
		"request_id": request.ID,
		"status":     request.Status,
	})

	if err := r.db.Omit("Business").Save(request).Error; err != nil {
		logger.Error("Failed to update compliance request in database", err, map[string]interface{}{
			"request_id": request.ID,
		})
		return err
	}
	return nil
}

// UpdateStatusForIDs sets status on every id in one statement.
func (r *complianceRequestRepository) UpdateStatusForIDs(ids []uint, status model.RequestStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	logger.Debug("Updating compliance request statuses in database", map[string]interface{}{
		"request_ids": ids,
		"status":      status,
	})

	result := r.db.Model(&model.ComplianceRequest{}).Where("id IN ?", ids).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update compliance request statuses in database", result.Error, map[string]interface{}{
			"request_ids": ids,
			"status":      status,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FinalizePayment marks every id PAID with the order details in a single
// transaction. Requests already PAID or COMPLETED are not touched; if any id
// fails to match, nothing is written.
func (r *complianceRequestRepository) FinalizePayment(ids []uint, fin PaymentFinalization) error {
	logger.Debug("Finalizing payment for compliance requests in database", map[string]interface{}{
		"request_ids":     ids,
		"order_reference": fin.OrderReference,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ComplianceRequest{}).
			Where("id IN ?", ids).
			Where("status NOT IN ?", []model.RequestStatus{model.RequestStatusPaid, model.RequestStatusCompleted}).
			Updates(map[string]interface{}{
				"status":                            model.RequestStatusPaid,
				"order_reference_number":            fin.OrderReference,
				"transaction_id":                    fin.TransactionID,
				"paid_at":                           fin.PaidAt,
				"agrees_to_terms_digital_signature": fin.AgreesToTerms,
				"client_signature_text":             fin.ClientSignatureText,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return ErrStaleRequests
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to finalize payment for compliance requests", err, map[string]interface{}{
			"request_ids":     ids,
			"order_reference": fin.OrderReference,
		})
		return err
	}

	logger.Debug("Compliance requests finalized as paid", map[string]interface{}{
		"request_ids":     ids,
		"order_reference": fin.OrderReference,
	})
	return nil
}

func (r *complianceRequestRepository) List(filter RequestFilter) ([]model.ComplianceRequest, int64, error) {
	logger.Debug("Listing compliance requests in database", map[string]interface{}{
		"request_type": filter.RequestType,
		"status":       filter.Status,
		"search":       filter.Search,
	})

	db := r.db.Model(&model.ComplianceRequest{}).
		Joins("JOIN businesses ON businesses.reference_id = compliance_requests.business_reference_id")
	if filter.RequestType != "" {
		db = db.Where("compliance_requests.request_type = ?", filter.RequestType)
	}
	if filter.Status != "" {
		db = db.Where("compliance_requests.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where(
			"LOWER(businesses.name) LIKE ? OR LOWER(businesses.reference_id) LIKE ? OR "+
				"LOWER(compliance_requests.applicant_email) LIKE ? OR LOWER(compliance_requests.applicant_last_name) LIKE ? OR "+
				"LOWER(compliance_requests.order_reference_number) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		logger.Error("Failed to count compliance requests in database", err, nil)
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var requests []model.ComplianceRequest
	if err := db.Select("compliance_requests.*").Preload("Business").
		Order("compliance_requests.created_at DESC").
		Order("compliance_requests.id DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&requests).Error; err != nil {
		logger.Error("Failed to list compliance requests in database", err, nil)
		return nil, 0, err
	}

	return requests, total, nil
}

// FindPaidBetween returns requests paid in [from, to), oldest first.
func (r *complianceRequestRepository) FindPaidBetween(from, to time.Time) ([]model.ComplianceRequest, error) {
	var requests []model.ComplianceRequest
	if err := r.db.Preload("Business").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", model.RequestStatusPaid, from, to).
		Order("paid_at ASC").Order("id ASC").
		Find(&requests).Error; err != nil {
		logger.Error("Failed to find paid compliance requests in database", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return nil, err
	}
	return requests, nil
}
