package service

import (
	"errors"
	"strings"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/pricing"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrQueryTooShort    = errors.New("search query too short")
)

const (
	MinSearchQueryLength = 2
	AutocompleteLimit    = 10
	SearchResultsLimit   = 50
	importBatchSize      = 500
)

// AutocompleteItem is one suggestion of the business search box.
type AutocompleteItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ServiceOffer is what the selection step shows for a business.
type ServiceOffer struct {
	Business *model.Business    `json:"business"`
	Services []pricing.Offering `json:"services"`
	Quote    *pricing.Quote     `json:"quote,omitempty"`
}

type BusinessService interface {
	Autocomplete(query string) ([]AutocompleteItem, error)
	Search(query string) ([]model.Business, error)
	GetByReference(referenceID string) (*model.Business, error)
	GetOffer(referenceID string, selection []pricing.ServiceCode) (*ServiceOffer, error)
	Import(businesses []model.Business) (int, error)
	RefreshNewFlags(days int, now time.Time) (int64, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
}

func NewBusinessService(businessRepo repository.BusinessRepository) BusinessService {
	return &businessService{businessRepo: businessRepo}
}

// Autocomplete returns at most AutocompleteLimit suggestions. Queries shorter
// than MinSearchQueryLength yield an empty list rather than an error.
func (s *businessService) Autocomplete(query string) ([]AutocompleteItem, error) {
	query = strings.TrimSpace(query)
	items := []AutocompleteItem{}
	if len(query) < MinSearchQueryLength {
		return items, nil
	}

	businesses, err := s.businessRepo.Search(query, AutocompleteLimit)
	if err != nil {
		return nil, err
	}
	for _, b := range businesses {
		items = append(items, AutocompleteItem{ID: b.ReferenceID, Label: b.AutocompleteLabel()})
	}
	return items, nil
}

func (s *businessService) Search(query string) ([]model.Business, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinSearchQueryLength {
		return nil, ErrQueryTooShort
	}

	businesses, err := s.businessRepo.Search(query, SearchResultsLimit)
	if err != nil {
		return nil, err
	}

	logger.Info("Business search completed", map[string]interface{}{
		"query": query,
		"count": len(businesses),
	})
	return businesses, nil
}

func (s *businessService) GetByReference(referenceID string) (*model.Business, error) {
	business, err := s.businessRepo.FindByReference(referenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

// GetOffer lists the services a business may order and, when selection is
// non-empty, prices it.
func (s *businessService) GetOffer(referenceID string, selection []pricing.ServiceCode) (*ServiceOffer, error) {
	business, err := s.GetByReference(referenceID)
	if err != nil {
		return nil, err
	}

	offer := &ServiceOffer{
		Business: business,
		Services: pricing.OfferedServices(business.BusinessType),
	}
	if len(selection) > 0 {
		if err := pricing.CheckOffered(selection, business.BusinessType); err != nil {
			return nil, err
		}
		quote, err := pricing.Calculate(selection, business.BusinessType)
		if err != nil {
			return nil, err
		}
		offer.Quote = &quote
	}
	return offer, nil
}

// Import upserts registry rows and returns how many were written.
func (s *businessService) Import(businesses []model.Business) (int, error) {
	logger.Info("Importing businesses", map[string]interface{}{
		"count": len(businesses),
	})

	if err := s.businessRepo.BulkUpsert(businesses, importBatchSize); err != nil {
		logger.Error("Failed to import businesses", err, map[string]interface{}{
			"count": len(businesses),
		})
		return 0, err
	}
	return len(businesses), nil
}

// RefreshNewFlags marks businesses formed within the last days as new.
func (s *businessService) RefreshNewFlags(days int, now time.Time) (int64, error) {
	since := now.AddDate(0, 0, -days)
	affected, err := s.businessRepo.RefreshNewFlags(since)
	if err != nil {
		return 0, err
	}

	logger.Info("Business new flags refreshed", map[string]interface{}{
		"days":     days,
		"affected": affected,
	})
	return affected, nil
}
