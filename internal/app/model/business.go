package model

import (
	"fmt"
	"time"

	"github.com/statelink/statelink-backend/pkg/util"
	"gorm.io/gorm"
)

type BusinessType string // entity type as registered with the state

const (
	BusinessTypeCorp      BusinessType = "CORP"      // corporation
	BusinessTypeLLC       BusinessType = "LLC"       // limited liability company
	BusinessTypeLP        BusinessType = "LP"        // limited partnership
	BusinessTypeNonProfit BusinessType = "NONPROFIT" // non-profit corporation
	BusinessTypeOther     BusinessType = "OTHER"
)

type Business struct {
	ReferenceID     string       `gorm:"primaryKey;type:varchar(50)" json:"reference_id"`       // state registry reference
	Name            string       `gorm:"type:varchar(255);not null;index" json:"name"`          // legal name
	BusinessType    BusinessType `gorm:"type:varchar(20);not null;index" json:"business_type"`  // CORP, LLC, ...
	Address         string       `gorm:"type:varchar(255)" json:"address"`                      // street line 1
	Address2        string       `gorm:"type:varchar(255)" json:"address2,omitempty"`           // street line 2
	City            string       `gorm:"type:varchar(100)" json:"city"`                         // city
	StateCode       string       `gorm:"type:varchar(2);index" json:"state_code"`               // two-letter state
	ZipCode         string       `gorm:"type:varchar(10)" json:"zip_code"`                      // postal code
	RegisteredAgent string       `gorm:"type:varchar(255)" json:"registered_agent,omitempty"`   // agent of record
	DateFormed      *time.Time   `json:"date_formed,omitempty"`                                 // formation date
	LastFilingDate  *time.Time   `json:"last_filing_date,omitempty"`                            // last annual filing
	Status          string       `gorm:"type:varchar(50);default:'ACTIVE'" json:"status"`       // registry standing
	IsNew           bool         `gorm:"default:false;index" json:"is_new"`                     // formed recently
	MissingFiling   bool         `gorm:"default:false;index" json:"missing_filing"`             // overdue annual report

	ComplianceRequests []ComplianceRequest `gorm:"foreignKey:BusinessReferenceID;references:ReferenceID;constraint:OnDelete:CASCADE" json:"compliance_requests,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate assigns a generated reference when the caller did not supply one.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ReferenceID == "" {
		b.ReferenceID = util.GenerateReferenceID()
	}
	if b.Status == "" {
		b.Status = "ACTIVE"
	}
	return nil
}

// AutocompleteLabel renders the entity as "<name> (<ref>) - <state>".
func (b Business) AutocompleteLabel() string {
	return fmt.Sprintf("%s (%s) - %s", b.Name, b.ReferenceID, b.StateCode)
}

// FormedWithin reports whether the business was formed less than days ago.
func (b Business) FormedWithin(days int, now time.Time) bool {
	if b.DateFormed == nil {
		return false
	}
	return b.DateFormed.After(now.AddDate(0, 0, -days))
}
