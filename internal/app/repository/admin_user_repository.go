package repository

import (
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
)

type AdminUserRepository interface {
	Create(user *model.AdminUser) error
	FindByUsername(username string) (*model.AdminUser, error)
	FindByID(id uint) (*model.AdminUser, error)
	UpdateLastLogin(id uint, at time.Time) error
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(user *model.AdminUser) error {
	logger.Debug("Creating admin user in database", map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create admin user in database", err, map[string]interface{}{
			"username": user.Username,
		})
		return err
	}
	return nil
}

func (r *adminUserRepository) FindByUsername(username string) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) FindByID(id uint) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&model.AdminUser{}).Where("id = ?", id).Update("last_login_at", at).Error
}
