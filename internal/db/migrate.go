package db

import (
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/statelink/statelink-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table in migration order.
func Models() []interface{} {
	models := []interface{}{
		&model.Business{},
		&model.ComplianceRequest{},
		&model.AdminUser{},
	}
	return append(models, model.DetailModels()...)
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedSampleBusinesses(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedSampleBusinesses inserts the five North Carolina sample entities used
// for demos and manual testing. Existing references are left untouched.
func SeedSampleBusinesses(db *gorm.DB) error {
	businesses := SampleBusinesses()
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&businesses)
	if result.Error != nil {
		return result.Error
	}

	logger.Info("Sample businesses seeded", map[string]interface{}{
		"inserted": result.RowsAffected,
	})
	return nil
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func SampleBusinesses() []model.Business {
	return []model.Business{
		{
			ReferenceID:     "REF001",
			Name:            "Acme Technologies LLC",
			BusinessType:    model.BusinessTypeLLC,
			Address:         "123 Main Street",
			Address2:        "Suite 100",
			City:            "Raleigh",
			StateCode:       "NC",
			ZipCode:         "27601",
			RegisteredAgent: "John Smith",
			DateFormed:      date(2024, time.January, 15),
			LastFilingDate:  date(2024, time.January, 15),
			Status:          "ACTIVE",
			IsNew:           true,
		},
		{
			ReferenceID:     "REF002",
			Name:            "Global Solutions Corp",
			BusinessType:    model.BusinessTypeCorp,
			Address:         "456 Business Park",
			City:            "Charlotte",
			StateCode:       "NC",
			ZipCode:         "28202",
			RegisteredAgent: "Sarah Johnson",
			DateFormed:      date(2023, time.June, 1),
			LastFilingDate:  date(2024, time.January, 1),
			Status:          "ACTIVE",
		},
		{
			ReferenceID:     "REF003",
			Name:            "Innovative Services LLC",
			BusinessType:    model.BusinessTypeLLC,
			Address:         "789 Tech Boulevard",
			Address2:        "Unit 200",
			City:            "Durham",
			StateCode:       "NC",
			ZipCode:         "27701",
			RegisteredAgent: "Michael Brown",
			DateFormed:      date(2023, time.December, 1),
			LastFilingDate:  date(2023, time.December, 1),
			Status:          "ACTIVE",
			IsNew:           true,
			MissingFiling:   true,
		},
		{
			ReferenceID:     "REF004",
			Name:            "Premier Consulting Corp",
			BusinessType:    model.BusinessTypeCorp,
			Address:         "321 Corporate Center",
			Address2:        "Floor 15",
			City:            "Greensboro",
			StateCode:       "NC",
			ZipCode:         "27401",
			RegisteredAgent: "Emily Davis",
			DateFormed:      date(2023, time.March, 15),
			LastFilingDate:  date(2023, time.December, 31),
			Status:          "ACTIVE",
			MissingFiling:   true,
		},
		{
			ReferenceID:     "REF005",
			Name:            "Elite Business Solutions LLC",
			BusinessType:    model.BusinessTypeLLC,
			Address:         "555 Enterprise Way",
			City:            "Winston-Salem",
			StateCode:       "NC",
			ZipCode:         "27101",
			RegisteredAgent: "David Wilson",
			DateFormed:      date(2024, time.February, 1),
			LastFilingDate:  date(2024, time.February, 1),
			Status:          "ACTIVE",
			IsNew:           true,
		},
	}
}
