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

func setupBusinessTest(t *testing.T) (*gorm.DB, BusinessRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	require.NoError(t, db.SeedSampleBusinesses(testDB))

	repo := NewBusinessRepository(testDB)
	return testDB, repo
}

func TestBusinessRepository_Create(t *testing.T) {
	testDB, repo := setupBusinessTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name     string
		business *model.Business
		wantErr  bool
	}{
		{
			name: "Generated reference",
			business: &model.Business{
				Name:         "Sandhills Bakery LLC",
				BusinessType: model.BusinessTypeLLC,
				StateCode:    "NC",
			},
		},
		{
			name: "Duplicate reference",
			business: &model.Business{
				ReferenceID:  "REF001",
				Name:         "Acme Copy",
				BusinessType: model.BusinessTypeLLC,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.business)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tt.business.ReferenceID, 8)
			assert.Equal(t, "ACTIVE", tt.business.Status)
		})
	}
}

func TestBusinessRepository_FindByReference(t *testing.T) {
	testDB, repo := setupBusinessTest(t)
	defer db.CleanupTestDB(testDB)

	business, err := repo.FindByReference("REF002")
	require.NoError(t, err)
	assert.Equal(t, "Global Solutions Corp", business.Name)
	assert.Equal(t, model.BusinessTypeCorp, business.BusinessType)

	_, err = repo.FindByReference("REF999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBusinessRepository_Search(t *testing.T) {
	testDB, repo := setupBusinessTest(t)
	defer db.CleanupTestDB(testDB)

	results, err := repo.Search("SOLUTIONS", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Elite Business Solutions LLC", results[0].Name)
	assert.Equal(t, "Global Solutions Corp", results[1].Name)

	results, err = repo.Search("ref", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestBusinessRepository_BulkUpsert(t *testing.T) {
	testDB, repo := setupBusinessTest(t)
	defer db.CleanupTestDB(testDB)

	err := repo.BulkUpsert([]model.Business{
		{ReferenceID: "REF002", Name: "Global Solutions Corporation", BusinessType: model.BusinessTypeCorp, City: "Charlotte", StateCode: "NC", Status: "DISSOLVED"},
		{ReferenceID: "REF200", Name: "Outer Banks Charters", BusinessType: model.BusinessTypeLP, City: "Nags Head", StateCode: "NC", Status: "ACTIVE"},
		{ReferenceID: "REF201", Name: "Piedmont Food Bank", BusinessType: model.BusinessTypeNonProfit, City: "Durham", StateCode: "NC", Status: "ACTIVE"},
	}, 2)
	require.NoError(t, err)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	updated, err := repo.FindByReference("REF002")
	require.NoError(t, err)
	assert.Equal(t, "Global Solutions Corporation", updated.Name)
	assert.Equal(t, "DISSOLVED", updated.Status)

	assert.NoError(t, repo.BulkUpsert(nil, 100))
}

func TestBusinessRepository_RefreshNewFlags(t *testing.T) {
	testDB, repo := setupBusinessTest(t)
	defer db.CleanupTestDB(testDB)

	affected, err := repo.RefreshNewFlags(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// only REF002 was formed after the cutoff without the flag
	assert.Equal(t, int64(1), affected)

	var fresh int64
	testDB.Model(&model.Business{}).Where("is_new = ?", true).Count(&fresh)
	assert.Equal(t, int64(4), fresh)

	affected, err = repo.RefreshNewFlags(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, affected)
}
