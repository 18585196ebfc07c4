package db

import (
	"testing"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_MigratesEveryModel(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	for _, m := range Models() {
		assert.True(t, testDB.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestSeedSampleBusinesses_Idempotent(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, SeedSampleBusinesses(testDB))
	require.NoError(t, SeedSampleBusinesses(testDB))

	var count int64
	testDB.Model(&model.Business{}).Count(&count)
	assert.Equal(t, int64(len(SampleBusinesses())), count)

	var llcs int64
	testDB.Model(&model.Business{}).Where("business_type = ?", model.BusinessTypeLLC).Count(&llcs)
	assert.Equal(t, int64(3), llcs)
}

func TestTruncateAllTables(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	require.NoError(t, SeedSampleBusinesses(testDB))
	require.NoError(t, TruncateAllTables(testDB))

	var count int64
	testDB.Model(&model.Business{}).Count(&count)
	assert.Zero(t, count)
}
