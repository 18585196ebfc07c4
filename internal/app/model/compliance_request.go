package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestType string   // purchasable service
type RequestStatus string // lifecycle of one service line

const (
	RequestTypeAnnualReport         RequestType = "ANNUAL_REPORT"
	RequestTypeOperatingAgreement   RequestType = "OPERATING_AGREEMENT"
	RequestTypeCorporateBylaws      RequestType = "CORPORATE_BYLAWS"
	RequestTypeFederalEIN           RequestType = "FEDERAL_EIN"
	RequestTypeLaborLawPoster       RequestType = "LABOR_LAW_POSTER"
	RequestTypeCertificateExistence RequestType = "CERTIFICATE_EXISTENCE"

	RequestStatusPending        RequestStatus = "PENDING"         // created at selection
	RequestStatusInProgress     RequestStatus = "IN_PROGRESS"     // intake form submitted
	RequestStatusCompleted      RequestStatus = "COMPLETED"       // fulfilled by staff
	RequestStatusPaymentPending RequestStatus = "PAYMENT_PENDING" // awaiting card payment
	RequestStatusPaid           RequestStatus = "PAID"
)

// RequestTypes lists every service in display order.
var RequestTypes = []RequestType{
	RequestTypeAnnualReport,
	RequestTypeOperatingAgreement,
	RequestTypeCorporateBylaws,
	RequestTypeFederalEIN,
	RequestTypeLaborLawPoster,
	RequestTypeCertificateExistence,
}

// NonTerminalStatuses are the statuses that block a second request of the same type.
var NonTerminalStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusInProgress,
	RequestStatusPaymentPending,
}

// IntakeCompleteStatuses are the statuses of requests ready to be charged.
var IntakeCompleteStatuses = []RequestStatus{
	RequestStatusInProgress,
	RequestStatusPaymentPending,
}

var requestTypeLabels = map[RequestType]string{
	RequestTypeAnnualReport:         "Annual Report",
	RequestTypeOperatingAgreement:   "Operating Agreement",
	RequestTypeCorporateBylaws:      "Corporate Bylaws",
	RequestTypeFederalEIN:           "Federal EIN",
	RequestTypeLaborLawPoster:       "Labor Law Poster",
	RequestTypeCertificateExistence: "Certificate of Existence",
}

func (t RequestType) Valid() bool {
	_, ok := requestTypeLabels[t]
	return ok
}

func (t RequestType) Label() string {
	if label, ok := requestTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

type ComplianceRequest struct {
	ID                  uint            `gorm:"primarykey" json:"id"`
	BusinessReferenceID string          `gorm:"type:varchar(50);not null;index" json:"business_reference_id"`
	RequestType         RequestType     `gorm:"type:varchar(30);not null;index" json:"request_type"`
	Status              RequestStatus   `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // fixed at creation

	// Applicant contact, copied from the intake form
	ApplicantReferenceID string `gorm:"type:varchar(50)" json:"applicant_reference_id,omitempty"`
	ApplicantFirstName   string `gorm:"type:varchar(100)" json:"applicant_first_name,omitempty"`
	ApplicantLastName    string `gorm:"type:varchar(100)" json:"applicant_last_name,omitempty"`
	ApplicantEmail       string `gorm:"type:varchar(255)" json:"applicant_email,omitempty"`
	ApplicantPhoneNumber string `gorm:"type:varchar(30)" json:"applicant_phone_number,omitempty"`

	// Captured on the payment step
	AgreesToTermsDigitalSignature bool   `gorm:"default:false" json:"agrees_to_terms_digital_signature"`
	ClientSignatureText           string `gorm:"type:varchar(255)" json:"client_signature_text,omitempty"`

	OrderReferenceNumber string     `gorm:"type:varchar(100);index" json:"order_reference_number,omitempty"`
	TransactionID        string     `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`

	Business *Business `gorm:"foreignKey:BusinessReferenceID;references:ReferenceID" json:"business,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ComplianceRequest) TableName() string {
	return "compliance_requests"
}

// ApplicantContact is the subset of intake fields mirrored onto the request.
type ApplicantContact struct {
	ReferenceID string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// ApplyContact copies non-empty contact fields onto the request.
func (r *ComplianceRequest) ApplyContact(contact ApplicantContact) {
	if contact.ReferenceID != "" {
		r.ApplicantReferenceID = contact.ReferenceID
	}
	if contact.FirstName != "" {
		r.ApplicantFirstName = contact.FirstName
	}
	if contact.LastName != "" {
		r.ApplicantLastName = contact.LastName
	}
	if contact.Email != "" {
		r.ApplicantEmail = contact.Email
	}
	if contact.PhoneNumber != "" {
		r.ApplicantPhoneNumber = contact.PhoneNumber
	}
}
