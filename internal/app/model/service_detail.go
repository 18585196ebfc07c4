package model

import "time"

// ServiceDetail is the per-service intake record owned by one ComplianceRequest.
type ServiceDetail interface {
	ServiceType() RequestType
	Base() *DetailBase
}

// DetailBase holds the columns every intake table shares. The unique
// compliance_request_id keeps intake one-to-one with its request.
type DetailBase struct {
	ID                  uint               `gorm:"primarykey" json:"id"`
	ComplianceRequestID uint               `gorm:"uniqueIndex;not null" json:"compliance_request_id"`
	ComplianceRequest   *ComplianceRequest `gorm:"foreignKey:ComplianceRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func (d *DetailBase) Base() *DetailBase {
	return d
}

// Requestor is the contact block shared by the document-order forms.
type Requestor struct {
	RequestorFirstName   string `gorm:"type:varchar(100)" json:"requestor_first_name"`
	RequestorLastName    string `gorm:"type:varchar(100)" json:"requestor_last_name"`
	RequestorEmail       string `gorm:"type:varchar(254)" json:"requestor_email"`
	RequestorPhoneNumber string `gorm:"type:varchar(20)" json:"requestor_phone_number"`
	BusinessReferenceID  string `gorm:"type:varchar(100)" json:"business_reference_id"`
	BusinessName         string `gorm:"type:varchar(255)" json:"business_name"`
}

// Contact maps the requestor block onto the applicant fields of the owning request.
func (r Requestor) Contact() ApplicantContact {
	return ApplicantContact{
		ReferenceID: r.BusinessReferenceID,
		FirstName:   r.RequestorFirstName,
		LastName:    r.RequestorLastName,
		Email:       r.RequestorEmail,
		PhoneNumber: r.RequestorPhoneNumber,
	}
}

// FederalEINRequest mirrors the IRS SS-4 questions we collect.
type FederalEINRequest struct {
	DetailBase

	EINLegalStructure string `gorm:"type:varchar(50)" json:"ein_legal_structure"`
	MembersCount      *int   `json:"members_count,omitempty"`

	// Responsible party
	RPFirstName           string `gorm:"type:varchar(100)" json:"rp_first_name"`
	RPMiddleName          string `gorm:"type:varchar(100)" json:"rp_middle_name,omitempty"`
	RPLastName            string `gorm:"type:varchar(100)" json:"rp_last_name"`
	RPSuffix              string `gorm:"type:varchar(10)" json:"rp_suffix,omitempty"`
	RPSSNITIN             string `gorm:"column:rp_ssn_itin;type:varchar(11)" json:"-"`
	RPSSNITINType         string `gorm:"column:rp_ssn_itin_type;type:varchar(4)" json:"rp_ssn_itin_type"`
	ResponsiblePartyTitle string `gorm:"type:varchar(100)" json:"responsible_party_title"`
	RPEmail               string `gorm:"column:rp_email;type:varchar(254)" json:"rp_email"`
	RPPhoneNumber         string `gorm:"column:rp_phone_number;type:varchar(20)" json:"rp_phone_number"`

	ReasonForEIN    string `gorm:"column:reason_for_ein;type:varchar(50)" json:"reason_for_ein"`
	OtherReasonText string `gorm:"type:varchar(255)" json:"other_reason_text,omitempty"`

	// Physical location
	LLCPhysicalStateLocation string `gorm:"column:llc_physical_state_location;type:varchar(2)" json:"llc_physical_state_location"`
	LLCPhysicalStreet        string `gorm:"column:llc_physical_street;type:varchar(255)" json:"llc_physical_street"`
	LLCPhysicalApt           string `gorm:"column:llc_physical_apt;type:varchar(50)" json:"llc_physical_apt,omitempty"`
	LLCPhysicalCity          string `gorm:"column:llc_physical_city;type:varchar(100)" json:"llc_physical_city"`
	LLCPhysicalZip           string `gorm:"column:llc_physical_zip;type:varchar(10)" json:"llc_physical_zip"`

	// Mailing address, when different
	LLCHasDifferentMailingAddress *bool  `gorm:"column:llc_has_different_mailing_address" json:"llc_has_different_mailing_address,omitempty"`
	LLCMailStreet                 string `gorm:"column:llc_mail_street;type:varchar(255)" json:"llc_mail_street,omitempty"`
	LLCMailApt                    string `gorm:"column:llc_mail_apt;type:varchar(50)" json:"llc_mail_apt,omitempty"`
	LLCMailCity                   string `gorm:"column:llc_mail_city;type:varchar(100)" json:"llc_mail_city,omitempty"`
	LLCMailState                  string `gorm:"column:llc_mail_state;type:varchar(2)" json:"llc_mail_state,omitempty"`
	LLCMailZip                    string `gorm:"column:llc_mail_zip;type:varchar(10)" json:"llc_mail_zip,omitempty"`

	LLCLegalNameMatchArticles     string     `gorm:"column:llc_legal_name_match_articles;type:varchar(255)" json:"llc_legal_name_match_articles"`
	LLCTradeName                  string     `gorm:"column:llc_trade_name;type:varchar(255)" json:"llc_trade_name,omitempty"`
	LLCCountyLocation             string     `gorm:"column:llc_county_location;type:varchar(100)" json:"llc_county_location"`
	LLCStateOfOrganization        string     `gorm:"column:llc_state_of_organization;type:varchar(2)" json:"llc_state_of_organization"`
	LLCFileDate                   *time.Time `gorm:"column:llc_file_date" json:"llc_file_date,omitempty"`
	LLCAccountingYearClosingMonth string     `gorm:"column:llc_accounting_year_closing_month;type:varchar(20)" json:"llc_accounting_year_closing_month"`
	BusinessStartDate             *time.Time `json:"business_start_date,omitempty"`

	// Activity questions
	OwnsHighwayVehicle55kLbs       *bool  `gorm:"column:owns_highway_vehicle_55k_lbs" json:"owns_highway_vehicle_55k_lbs,omitempty"`
	InvolvesGamblingWagering       *bool  `json:"involves_gambling_wagering,omitempty"`
	NeedsToFileForm720             *bool  `gorm:"column:needs_to_file_form_720" json:"needs_to_file_form_720,omitempty"`
	SellsAlcoholTobaccoFirearms    *bool  `json:"sells_alcohol_tobacco_firearms,omitempty"`
	ExpectsEmployeesW2Next12Months *bool  `gorm:"column:expects_employees_w2_next_12_months" json:"expects_employees_w2_next_12_months,omitempty"`
	PrimaryBusinessActivity        string `gorm:"type:varchar(100)" json:"primary_business_activity"`
}

func (FederalEINRequest) TableName() string        { return "federal_ein_requests" }
func (FederalEINRequest) ServiceType() RequestType { return RequestTypeFederalEIN }

type OperatingAgreementRequest struct {
	DetailBase

	MemberNames          string `gorm:"type:text" json:"member_names"`
	OwnershipPercentages string `gorm:"type:text" json:"ownership_percentages"`
	ManagementStructure  string `gorm:"type:varchar(20)" json:"management_structure"` // MEMBER_MANAGED or MANAGER_MANAGED
	CapitalContributions string `gorm:"type:text" json:"capital_contributions,omitempty"`
	ProfitDistribution   string `gorm:"type:text" json:"profit_distribution,omitempty"`
}

func (OperatingAgreementRequest) TableName() string        { return "operating_agreement_requests" }
func (OperatingAgreementRequest) ServiceType() RequestType { return RequestTypeOperatingAgreement }

type CorporateBylawsRequest struct {
	DetailBase
	Requestor

	PurposeOfRequest string `gorm:"type:varchar(255)" json:"purpose_of_request"`
	OtherReasonText  string `gorm:"type:varchar(255)" json:"other_reason_text,omitempty"`
	MemberNames      string `gorm:"type:text" json:"member_names,omitempty"`
}

func (CorporateBylawsRequest) TableName() string        { return "corporate_bylaws_requests" }
func (CorporateBylawsRequest) ServiceType() RequestType { return RequestTypeCorporateBylaws }

type CertificateExistenceRequest struct {
	DetailBase
	Requestor

	FileNumber       string `gorm:"type:varchar(100)" json:"file_number,omitempty"`
	PurposeOfRequest string `gorm:"type:varchar(255)" json:"purpose_of_request"`
	OtherReasonText  string `gorm:"type:varchar(255)" json:"other_reason_text,omitempty"`
}

func (CertificateExistenceRequest) TableName() string        { return "certificate_existence_requests" }
func (CertificateExistenceRequest) ServiceType() RequestType { return RequestTypeCertificateExistence }

type LaborLawPosterRequest struct {
	DetailBase
	Requestor
}

func (LaborLawPosterRequest) TableName() string        { return "labor_law_poster_requests" }
func (LaborLawPosterRequest) ServiceType() RequestType { return RequestTypeLaborLawPoster }

// AnnualReportRequest collects what the state annual report filing asks for.
type AnnualReportRequest struct {
	DetailBase
	Requestor

	PrincipalOfficeStreet string `gorm:"type:varchar(255)" json:"principal_office_street"`
	PrincipalOfficeCity   string `gorm:"type:varchar(100)" json:"principal_office_city"`
	PrincipalOfficeState  string `gorm:"type:varchar(2)" json:"principal_office_state"`
	PrincipalOfficeZip    string `gorm:"type:varchar(10)" json:"principal_office_zip"`
	OfficerNames          string `gorm:"type:text" json:"officer_names"`
	NatureOfBusiness      string `gorm:"type:varchar(255)" json:"nature_of_business,omitempty"`
	RegisteredAgentName   string `gorm:"type:varchar(255)" json:"registered_agent_name,omitempty"`
	FiscalYearEndMonth    string `gorm:"type:varchar(20)" json:"fiscal_year_end_month,omitempty"`
}

func (AnnualReportRequest) TableName() string        { return "annual_report_requests" }
func (AnnualReportRequest) ServiceType() RequestType { return RequestTypeAnnualReport }

// DetailModels lists every intake table for migrations.
func DetailModels() []interface{} {
	return []interface{}{
		&FederalEINRequest{},
		&OperatingAgreementRequest{},
		&CorporateBylawsRequest{},
		&CertificateExistenceRequest{},
		&LaborLawPosterRequest{},
		&AnnualReportRequest{},
	}
}
