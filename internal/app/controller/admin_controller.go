package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/service"
	apperrors "github.com/statelink/statelink-backend/internal/errors"
	"github.com/statelink/statelink-backend/internal/middleware"
	ws "github.com/statelink/statelink-backend/internal/websocket"
)

const maxImportSize = 10 << 20 // 10MB

type AdminController struct {
	adminService    service.AdminService
	businessService service.BusinessService
	exportService   service.ExportService
	hub             *ws.Hub
	upgrader        websocket.Upgrader
}

// NewAdminController wires the back office. exportService and hub may be nil
// when S3 or the live feed are not configured.
func NewAdminController(
	adminService service.AdminService,
	businessService service.BusinessService,
	exportService service.ExportService,
	hub *ws.Hub,
	allowedOrigins []string,
) *AdminController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &AdminController{
		adminService:    adminService,
		businessService: businessService,
		exportService:   exportService,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ExportRequest struct {
	From string `json:"from" binding:"required,datetime=2006-01-02"`
	To   string `json:"to" binding:"required,datetime=2006-01-02"`
}

// Login issues a token pair for a back-office account
// POST /api/v1/admin/login
func (ctrl *AdminController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.adminService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Admin login rejected", map[string]interface{}{
				"username": req.Username,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid username or password")
			return
		}
		log.Error("Admin login failed", err, map[string]interface{}{
			"username": req.Username,
		})
		apperrors.InternalError(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Logout revokes the presented access token
// POST /api/v1/admin/logout
func (ctrl *AdminController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token, ok := middleware.GetToken(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.adminService.Logout(c.Request.Context(), token); err != nil {
		log.Error("Admin logout failed", err, nil)
		apperrors.InternalError(c, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}

// ListRequests is the compliance request list with type/status filters and search
// GET /api/v1/admin/compliance-requests
func (ctrl *AdminController) ListRequests(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := repository.RequestFilter{
		RequestType: model.RequestType(c.Query("request_type")),
		Status:      model.RequestStatus(c.Query("status")),
		Search:      c.Query("search"),
		Limit:       limit,
		Offset:      offset,
	}

	requests, total, err := ctrl.adminService.ListRequests(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequestFilter) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown request type or status")
			return
		}
		log.Error("Failed to list compliance requests", err, nil)
		apperrors.InternalError(c, "Failed to list compliance requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"count":    len(requests),
	})
}

// CompleteRequest marks a paid request as fulfilled
// POST /api/v1/admin/compliance-requests/:request_id/complete
func (ctrl *AdminController) CompleteRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	request, err := ctrl.adminService.MarkCompleted(requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			apperrors.NotFound(c, apperrors.CheckoutRequestNotFound, "Compliance request not found")
		case errors.Is(err, service.ErrInvalidStatusChange):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Only paid requests can be completed")
		default:
			log.Error("Failed to complete compliance request", err, map[string]interface{}{
				"request_id": requestID,
			})
			apperrors.InternalError(c, "Failed to complete compliance request")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// ImportBusinesses upserts the business registry from an XLSX upload
// POST /api/v1/admin/businesses/import
func (ctrl *AdminController) ImportBusinesses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Upload an XLSX file in the \"file\" field")
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "File exceeds 10MB")
		return
	}

	businesses, summary, err := service.ReadRegistryXLSX(file)
	if err != nil {
		log.Warn("Rejected registry workbook", map[string]interface{}{
			"filename": header.Filename,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, err.Error())
		return
	}

	imported, err := ctrl.businessService.Import(businesses)
	if err != nil {
		log.Error("Failed to import businesses", err, map[string]interface{}{
			"filename": header.Filename,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "import businesses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"summary":  summary,
	})
}

// ExportPaidOrders uploads the paid orders of [from, to] to object storage
// POST /api/v1/admin/exports
func (ctrl *AdminController) ExportPaidOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.exportService == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Exports are not configured")
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}
	from, _ := time.Parse("2006-01-02", req.From)
	to, _ := time.Parse("2006-01-02", req.To)

	// to is inclusive
	result, err := ctrl.exportService.ExportPaidOrders(c.Request.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		if errors.Is(err, service.ErrInvalidExportRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "from must not be after to")
			return
		}
		log.Error("Paid order export failed", err, map[string]interface{}{
			"from": req.From,
			"to":   req.To,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.ExportFailed, "Export failed")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// LiveFeed upgrades to a WebSocket that streams paid orders
// GET /api/v1/admin/ws
func (ctrl *AdminController) LiveFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	if ctrl.hub == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "Live feed is not enabled")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Live feed connected", map[string]interface{}{
		"user_id": userID,
	})
}
