package service

import (
	"errors"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
)

var ErrUnknownServiceType = errors.New("no intake form for request type")

// ServiceForm is the intake payload of one request type. Bound from JSON by
// the controller and validated through its binding tags.
type ServiceForm interface {
	// Detail builds the intake row owned by requestID.
	Detail(requestID uint) model.ServiceDetail
	// Contact is what gets mirrored onto the request's applicant fields.
	Contact() model.ApplicantContact
}

type serviceEntry struct {
	Title     string
	NewForm   func() ServiceForm
	NewDetail func() model.ServiceDetail
}

// serviceCatalog is the single place a request type meets its form and table.
// Every value of model.RequestTypes has an entry.
var serviceCatalog = map[model.RequestType]serviceEntry{
	model.RequestTypeFederalEIN: {
		Title:     "Federal EIN Application",
		NewForm:   func() ServiceForm { return &FederalEINForm{} },
		NewDetail: func() model.ServiceDetail { return &model.FederalEINRequest{} },
	},
	model.RequestTypeOperatingAgreement: {
		Title:     "Operating Agreement",
		NewForm:   func() ServiceForm { return &OperatingAgreementForm{} },
		NewDetail: func() model.ServiceDetail { return &model.OperatingAgreementRequest{} },
	},
	model.RequestTypeCorporateBylaws: {
		Title:     "Corporate Bylaws",
		NewForm:   func() ServiceForm { return &CorporateBylawsForm{} },
		NewDetail: func() model.ServiceDetail { return &model.CorporateBylawsRequest{} },
	},
	model.RequestTypeCertificateExistence: {
		Title:     "Certificate of Existence",
		NewForm:   func() ServiceForm { return &CertificateExistenceForm{} },
		NewDetail: func() model.ServiceDetail { return &model.CertificateExistenceRequest{} },
	},
	model.RequestTypeLaborLawPoster: {
		Title:     "Labor Law Poster",
		NewForm:   func() ServiceForm { return &LaborLawPosterForm{} },
		NewDetail: func() model.ServiceDetail { return &model.LaborLawPosterRequest{} },
	},
	model.RequestTypeAnnualReport: {
		Title:     "Annual Report",
		NewForm:   func() ServiceForm { return &AnnualReportForm{} },
		NewDetail: func() model.ServiceDetail { return &model.AnnualReportRequest{} },
	},
}

func lookupService(t model.RequestType) (serviceEntry, error) {
	entry, ok := serviceCatalog[t]
	if !ok {
		return serviceEntry{}, ErrUnknownServiceType
	}
	return entry, nil
}

// NewServiceForm returns an empty form for t, ready to bind.
func NewServiceForm(t model.RequestType) (ServiceForm, error) {
	entry, err := lookupService(t)
	if err != nil {
		return nil, err
	}
	return entry.NewForm(), nil
}

// RequestorForm is the contact block of the document-order forms.
type RequestorForm struct {
	RequestorFirstName   string `json:"requestor_first_name" binding:"required,max=100"`
	RequestorLastName    string `json:"requestor_last_name" binding:"required,max=100"`
	RequestorEmail       string `json:"requestor_email" binding:"required,email,max=254"`
	RequestorPhoneNumber string `json:"requestor_phone_number" binding:"required,max=20"`
	BusinessReferenceID  string `json:"business_reference_id" binding:"omitempty,max=100"`
	BusinessName         string `json:"business_name" binding:"omitempty,max=255"`
}

func (f RequestorForm) requestor() model.Requestor {
	return model.Requestor{
		RequestorFirstName:   f.RequestorFirstName,
		RequestorLastName:    f.RequestorLastName,
		RequestorEmail:       f.RequestorEmail,
		RequestorPhoneNumber: f.RequestorPhoneNumber,
		BusinessReferenceID:  f.BusinessReferenceID,
		BusinessName:         f.BusinessName,
	}
}

func (f RequestorForm) Contact() model.ApplicantContact {
	return f.requestor().Contact()
}

type FederalEINForm struct {
	EINLegalStructure string `json:"ein_legal_structure" binding:"required,oneof=SOLE_PROPRIETORSHIP PARTNERSHIP JOINT_VENTURE C_CORPORATION S_CORPORATION LLC"`
	MembersCount      *int   `json:"members_count" binding:"omitempty,min=1"`

	RPFirstName           string `json:"rp_first_name" binding:"required,max=100"`
	RPMiddleName          string `json:"rp_middle_name" binding:"omitempty,max=100"`
	RPLastName            string `json:"rp_last_name" binding:"required,max=100"`
	RPSuffix              string `json:"rp_suffix" binding:"omitempty,max=10"`
	RPSSNITIN             string `json:"rp_ssn_itin" binding:"required,min=9,max=11"`
	RPSSNITINType         string `json:"rp_ssn_itin_type" binding:"required,oneof=SSN ITIN"`
	ResponsiblePartyTitle string `json:"responsible_party_title" binding:"required,max=100"`
	RPEmail               string `json:"rp_email" binding:"omitempty,email,max=254"`
	RPPhoneNumber         string `json:"rp_phone_number" binding:"omitempty,max=20"`

	ReasonForEIN    string `json:"reason_for_ein" binding:"required,oneof=NEW_BUSINESS HIRED_EMPLOYEES BANKING_PURPOSES CHANGED_TYPE_OF_ORGANIZATION PURCHASED_BUSINESS OTHER"`
	OtherReasonText string `json:"other_reason_text" binding:"required_if=ReasonForEIN OTHER,max=255"`

	LLCPhysicalStateLocation string `json:"llc_physical_state_location" binding:"required,len=2"`
	LLCPhysicalStreet        string `json:"llc_physical_street" binding:"required,max=255"`
	LLCPhysicalApt           string `json:"llc_physical_apt" binding:"omitempty,max=50"`
	LLCPhysicalCity          string `json:"llc_physical_city" binding:"required,max=100"`
	LLCPhysicalZip           string `json:"llc_physical_zip" binding:"required,max=10"`

	LLCHasDifferentMailingAddress *bool  `json:"llc_has_different_mailing_address"`
	LLCMailStreet                 string `json:"llc_mail_street" binding:"omitempty,max=255"`
	LLCMailApt                    string `json:"llc_mail_apt" binding:"omitempty,max=50"`
	LLCMailCity                   string `json:"llc_mail_city" binding:"omitempty,max=100"`
	LLCMailState                  string `json:"llc_mail_state" binding:"omitempty,len=2"`
	LLCMailZip                    string `json:"llc_mail_zip" binding:"omitempty,max=10"`

	LLCLegalNameMatchArticles     string `json:"llc_legal_name_match_articles" binding:"required,max=255"`
	LLCTradeName                  string `json:"llc_trade_name" binding:"omitempty,max=255"`
	LLCCountyLocation             string `json:"llc_county_location" binding:"required,max=100"`
	LLCStateOfOrganization        string `json:"llc_state_of_organization" binding:"required,len=2"`
	LLCFileDate                   string `json:"llc_file_date" binding:"omitempty,datetime=2006-01-02"`
	LLCAccountingYearClosingMonth string `json:"llc_accounting_year_closing_month" binding:"required,oneof=JANUARY FEBRUARY MARCH APRIL MAY JUNE JULY AUGUST SEPTEMBER OCTOBER NOVEMBER DECEMBER"`
	BusinessStartDate             string `json:"business_start_date" binding:"omitempty,datetime=2006-01-02"`

	OwnsHighwayVehicle55kLbs       *bool  `json:"owns_highway_vehicle_55k_lbs"`
	InvolvesGamblingWagering       *bool  `json:"involves_gambling_wagering"`
	NeedsToFileForm720             *bool  `json:"needs_to_file_form_720"`
	SellsAlcoholTobaccoFirearms    *bool  `json:"sells_alcohol_tobacco_firearms"`
	ExpectsEmployeesW2Next12Months *bool  `json:"expects_employees_w2_next_12_months"`
	PrimaryBusinessActivity        string `json:"primary_business_activity" binding:"required,max=100"`
}

func (f *FederalEINForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.FederalEINRequest{
		EINLegalStructure:              f.EINLegalStructure,
		MembersCount:                   f.MembersCount,
		RPFirstName:                    f.RPFirstName,
		RPMiddleName:                   f.RPMiddleName,
		RPLastName:                     f.RPLastName,
		RPSuffix:                       f.RPSuffix,
		RPSSNITIN:                      f.RPSSNITIN,
		RPSSNITINType:                  f.RPSSNITINType,
		ResponsiblePartyTitle:          f.ResponsiblePartyTitle,
		RPEmail:                        f.RPEmail,
		RPPhoneNumber:                  f.RPPhoneNumber,
		ReasonForEIN:                   f.ReasonForEIN,
		OtherReasonText:                f.OtherReasonText,
		LLCPhysicalStateLocation:       f.LLCPhysicalStateLocation,
		LLCPhysicalStreet:              f.LLCPhysicalStreet,
		LLCPhysicalApt:                 f.LLCPhysicalApt,
		LLCPhysicalCity:                f.LLCPhysicalCity,
		LLCPhysicalZip:                 f.LLCPhysicalZip,
		LLCHasDifferentMailingAddress:  f.LLCHasDifferentMailingAddress,
		LLCMailStreet:                  f.LLCMailStreet,
		LLCMailApt:                     f.LLCMailApt,
		LLCMailCity:                    f.LLCMailCity,
		LLCMailState:                   f.LLCMailState,
		LLCMailZip:                     f.LLCMailZip,
		LLCLegalNameMatchArticles:      f.LLCLegalNameMatchArticles,
		LLCTradeName:                   f.LLCTradeName,
		LLCCountyLocation:              f.LLCCountyLocation,
		LLCStateOfOrganization:         f.LLCStateOfOrganization,
		LLCFileDate:                    parseDate(f.LLCFileDate),
		LLCAccountingYearClosingMonth:  f.LLCAccountingYearClosingMonth,
		BusinessStartDate:              parseDate(f.BusinessStartDate),
		OwnsHighwayVehicle55kLbs:       f.OwnsHighwayVehicle55kLbs,
		InvolvesGamblingWagering:       f.InvolvesGamblingWagering,
		NeedsToFileForm720:             f.NeedsToFileForm720,
		SellsAlcoholTobaccoFirearms:    f.SellsAlcoholTobaccoFirearms,
		ExpectsEmployeesW2Next12Months: f.ExpectsEmployeesW2Next12Months,
		PrimaryBusinessActivity:        f.PrimaryBusinessActivity,
	}
	d.ComplianceRequestID = requestID
	return d
}

// Contact uses the responsible party as the applicant.
func (f *FederalEINForm) Contact() model.ApplicantContact {
	return model.ApplicantContact{
		FirstName:   f.RPFirstName,
		LastName:    f.RPLastName,
		Email:       f.RPEmail,
		PhoneNumber: f.RPPhoneNumber,
	}
}

type OperatingAgreementForm struct {
	MemberNames          string `json:"member_names" binding:"required"`
	OwnershipPercentages string `json:"ownership_percentages" binding:"required"`
	ManagementStructure  string `json:"management_structure" binding:"required,oneof=MEMBER_MANAGED MANAGER_MANAGED"`
	CapitalContributions string `json:"capital_contributions"`
	ProfitDistribution   string `json:"profit_distribution"`
}

func (f *OperatingAgreementForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.OperatingAgreementRequest{
		MemberNames:          f.MemberNames,
		OwnershipPercentages: f.OwnershipPercentages,
		ManagementStructure:  f.ManagementStructure,
		CapitalContributions: f.CapitalContributions,
		ProfitDistribution:   f.ProfitDistribution,
	}
	d.ComplianceRequestID = requestID
	return d
}

// Contact is empty: the operating agreement form collects no contact block.
func (f *OperatingAgreementForm) Contact() model.ApplicantContact {
	return model.ApplicantContact{}
}

type CorporateBylawsForm struct {
	RequestorForm

	PurposeOfRequest string `json:"purpose_of_request" binding:"required,oneof=OPEN_BANKING_ACCOUNT BUSINESS_LOAN BUSINESS_CONTRACT BUSINESS_LICENSE OTHER_REASON"`
	OtherReasonText  string `json:"other_reason_text" binding:"required_if=PurposeOfRequest OTHER_REASON,max=255"`
	MemberNames      string `json:"member_names"`
}

func (f *CorporateBylawsForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.CorporateBylawsRequest{
		Requestor:        f.requestor(),
		PurposeOfRequest: f.PurposeOfRequest,
		OtherReasonText:  f.OtherReasonText,
		MemberNames:      f.MemberNames,
	}
	d.ComplianceRequestID = requestID
	return d
}

type CertificateExistenceForm struct {
	RequestorForm

	FileNumber       string `json:"file_number" binding:"omitempty,max=100"`
	PurposeOfRequest string `json:"purpose_of_request" binding:"required,oneof=OPEN_BANKING_ACCOUNT BUSINESS_LOAN BUSINESS_CONTRACT BUSINESS_LICENSE OTHER_REASON"`
	OtherReasonText  string `json:"other_reason_text" binding:"required_if=PurposeOfRequest OTHER_REASON,max=255"`
}

func (f *CertificateExistenceForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.CertificateExistenceRequest{
		Requestor:        f.requestor(),
		FileNumber:       f.FileNumber,
		PurposeOfRequest: f.PurposeOfRequest,
		OtherReasonText:  f.OtherReasonText,
	}
	d.ComplianceRequestID = requestID
	return d
}

type LaborLawPosterForm struct {
	RequestorForm
}

func (f *LaborLawPosterForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.LaborLawPosterRequest{Requestor: f.requestor()}
	d.ComplianceRequestID = requestID
	return d
}

type AnnualReportForm struct {
	RequestorForm

	PrincipalOfficeStreet string `json:"principal_office_street" binding:"required,max=255"`
	PrincipalOfficeCity   string `json:"principal_office_city" binding:"required,max=100"`
	PrincipalOfficeState  string `json:"principal_office_state" binding:"required,len=2"`
	PrincipalOfficeZip    string `json:"principal_office_zip" binding:"required,max=10"`
	OfficerNames          string `json:"officer_names" binding:"required"`
	NatureOfBusiness      string `json:"nature_of_business" binding:"omitempty,max=255"`
	RegisteredAgentName   string `json:"registered_agent_name" binding:"omitempty,max=255"`
	FiscalYearEndMonth    string `json:"fiscal_year_end_month" binding:"omitempty,max=20"`
}

func (f *AnnualReportForm) Detail(requestID uint) model.ServiceDetail {
	d := &model.AnnualReportRequest{
		Requestor:             f.requestor(),
		PrincipalOfficeStreet: f.PrincipalOfficeStreet,
		PrincipalOfficeCity:   f.PrincipalOfficeCity,
		PrincipalOfficeState:  f.PrincipalOfficeState,
		PrincipalOfficeZip:    f.PrincipalOfficeZip,
		OfficerNames:          f.OfficerNames,
		NatureOfBusiness:      f.NatureOfBusiness,
		RegisteredAgentName:   f.RegisteredAgentName,
		FiscalYearEndMonth:    f.FiscalYearEndMonth,
	}
	d.ComplianceRequestID = requestID
	return d
}

// parseDate reads a YYYY-MM-DD value already checked by the datetime binding.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
