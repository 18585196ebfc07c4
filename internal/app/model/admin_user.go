package model

import "time"

type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin" // full back-office access
	AdminRoleStaff AdminRole = "staff" // read-only order desk
)

// AdminUser is a back-office account. Customers never authenticate.
type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(255)" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         AdminRole  `gorm:"type:varchar(20);default:'admin'" json:"role"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
