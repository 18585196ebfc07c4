package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/statelink/statelink-backend/internal/app/pricing"
	"github.com/statelink/statelink-backend/internal/app/service"
	apperrors "github.com/statelink/statelink-backend/internal/errors"
	"github.com/statelink/statelink-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{
		businessService: businessService,
	}
}

// Autocomplete returns at most 10 {id, label} suggestions
// GET /api/v1/businesses/search?query=
func (ctrl *BusinessController) Autocomplete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("query")
	items, err := ctrl.businessService.Autocomplete(query)
	if err != nil {
		log.Error("Failed to autocomplete businesses", err, map[string]interface{}{
			"query": query,
		})
		apperrors.InternalError(c, "Failed to search businesses")
		return
	}

	c.JSON(http.StatusOK, items)
}

// Search lists every business matching q
// GET /api/v1/businesses?q=
func (ctrl *BusinessController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	businesses, err := ctrl.businessService.Search(query)
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			apperrors.BadRequest(c, apperrors.ValidationQueryTooShort, "Enter at least 2 characters to search")
			return
		}
		log.Error("Failed to search businesses", err, map[string]interface{}{
			"query": query,
		})
		apperrors.InternalError(c, "Failed to search businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      query,
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// GetBusiness returns a single business
// GET /api/v1/businesses/:reference_id
func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ref := c.Param("reference_id")
	business, err := ctrl.businessService.GetByReference(ref)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
			return
		}
		log.Error("Failed to fetch business", err, map[string]interface{}{
			"reference_id": ref,
		})
		apperrors.InternalError(c, "Failed to fetch business")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business": business,
	})
}

// GetServices lists the orderable services and prices ?services= when given
// GET /api/v1/businesses/:reference_id/services
func (ctrl *BusinessController) GetServices(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ref := c.Param("reference_id")
	selection := parseServiceCodes(c.QueryArray("services"))

	offer, err := ctrl.businessService.GetOffer(ref, selection)
	if err != nil {
		var unknown pricing.ErrUnknownCode
		var notOffered pricing.ErrNotOffered
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.As(err, &unknown):
			apperrors.BadRequest(c, apperrors.BusinessUnknownCode, unknown.Error())
		case errors.As(err, &notOffered):
			apperrors.BadRequest(c, apperrors.BusinessNotOffered, notOffered.Error())
		default:
			log.Error("Failed to build service offer", err, map[string]interface{}{
				"reference_id": ref,
			})
			apperrors.InternalError(c, "Failed to load services")
		}
		return
	}

	c.JSON(http.StatusOK, offer)
}

// parseServiceCodes accepts both repeated and comma-separated values.
func parseServiceCodes(values []string) []pricing.ServiceCode {
	var codes []pricing.ServiceCode
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				codes = append(codes, pricing.ServiceCode(part))
			}
		}
	}
	return codes
}
