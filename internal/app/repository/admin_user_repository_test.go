package repository

import (
	"testing"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdminUserRepository(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewAdminUserRepository(testDB)

	user := &model.AdminUser{
		Username:     "ops",
		Email:        "ops@statelink.com",
		PasswordHash: "hashedpassword",
		Role:         model.AdminRoleStaff,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))
	require.NotZero(t, user.ID)

	assert.Error(t, repo.Create(&model.AdminUser{Username: "ops", PasswordHash: "x"}))

	found, err := repo.FindByUsername("ops")
	require.NoError(t, err)
	assert.Equal(t, model.AdminRoleStaff, found.Role)
	assert.Nil(t, found.LastLoginAt)

	_, err = repo.FindByUsername("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	at := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(user.ID, at))

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, byID.LastLoginAt.Equal(at))
}
