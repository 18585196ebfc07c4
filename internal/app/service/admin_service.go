package service

import (
	"context"
	"errors"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/pkg/logger"
	"github.com/statelink/statelink-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAdminExists          = errors.New("admin user already exists")
	ErrInvalidStatusChange  = errors.New("request cannot move to that status")
	ErrInvalidRequestFilter = errors.New("invalid request filter")
)

// TokenRevoker blacklists a token for ttl.
type TokenRevoker func(ctx context.Context, token string, ttl time.Duration) error

type AdminService interface {
	Login(username, password string) (*model.AdminUser, *util.TokenPair, error)
	Logout(ctx context.Context, token string) error
	CreateAdmin(username, email, password string, role model.AdminRole) (*model.AdminUser, error)
	EnsureDefaultAdmin(username, email, password string) error
	ListRequests(filter repository.RequestFilter) ([]model.ComplianceRequest, int64, error)
	MarkCompleted(requestID uint) (*model.ComplianceRequest, error)
}

type adminService struct {
	adminRepo     repository.AdminUserRepository
	requestRepo   repository.ComplianceRequestRepository
	revoke        TokenRevoker
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAdminService(
	adminRepo repository.AdminUserRepository,
	requestRepo repository.ComplianceRequestRepository,
	revoke TokenRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AdminService {
	return &adminService{
		adminRepo:     adminRepo,
		requestRepo:   requestRepo,
		revoke:        revoke,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *adminService) Login(username, password string) (*model.AdminUser, *util.TokenPair, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"username": username,
	})

	user, err := s.adminRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Admin login failed: user not found", map[string]interface{}{
				"username": username,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive || !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Admin login failed: bad password or inactive account", map[string]interface{}{
			"username": username,
			"active":   user.IsActive,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate admin tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		// Login still succeeds
		logger.Warn("Failed to record admin last login", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// Logout revokes token for the rest of its lifetime.
func (s *adminService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return err
	}

	ttl := claims.RevocationTTL(time.Now(), s.accessExpiry)
	if ttl <= 0 || s.revoke == nil {
		return nil
	}

	if err := s.revoke(ctx, token, ttl); err != nil {
		logger.Error("Failed to revoke admin token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("Admin logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *adminService) CreateAdmin(username, email, password string, role model.AdminRole) (*model.AdminUser, error) {
	existing, err := s.adminRepo.FindByUsername(username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAdminExists
	}

	hash, err := util.HashPassword(password)
	if errors.Is(err, util.ErrWeakPassword) {
		return nil, err
	}
	if err != nil {
		logger.Error("Failed to hash admin password", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	if role == "" {
		role = model.AdminRoleAdmin
	}
	user := &model.AdminUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Admin user created", map[string]interface{}{
		"user_id":  user.ID,
		"username": username,
		"role":     role,
	})
	return user, nil
}

// EnsureDefaultAdmin creates the bootstrap account unless it already exists.
// An empty password disables bootstrapping.
func (s *adminService) EnsureDefaultAdmin(username, email, password string) error {
	if password == "" {
		logger.Warn("Default admin password not configured, skipping bootstrap", nil)
		return nil
	}

	_, err := s.CreateAdmin(username, email, password, model.AdminRoleAdmin)
	if errors.Is(err, ErrAdminExists) {
		return nil
	}
	return err
}

func (s *adminService) ListRequests(filter repository.RequestFilter) ([]model.ComplianceRequest, int64, error) {
	if filter.RequestType != "" && !filter.RequestType.Valid() {
		return nil, 0, ErrInvalidRequestFilter
	}
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, 0, ErrInvalidRequestFilter
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.requestRepo.List(filter)
}

// MarkCompleted records fulfilment of a paid request.
func (s *adminService) MarkCompleted(requestID uint) (*model.ComplianceRequest, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if request.Status != model.RequestStatusPaid {
		logger.Warn("Refusing to complete unpaid request", map[string]interface{}{
			"request_id": requestID,
			"status":     request.Status,
		})
		return nil, ErrInvalidStatusChange
	}

	request.Status = model.RequestStatusCompleted
	if err := s.requestRepo.Update(request); err != nil {
		return nil, err
	}

	logger.Info("Compliance request completed", map[string]interface{}{
		"request_id":   requestID,
		"request_type": request.RequestType,
	})
	return request, nil
}

func validStatus(status model.RequestStatus) bool {
	switch status {
	case model.RequestStatusPending, model.RequestStatusInProgress, model.RequestStatusCompleted,
		model.RequestStatusPaymentPending, model.RequestStatusPaid:
		return true
	}
	return false
}
