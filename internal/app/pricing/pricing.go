// Package pricing computes checkout totals from a service selection.
//
// Prices are fixed. The labor law poster and certificate of existence are
// only sold together as one bundle line; a business whose selection covers
// the full package for its entity type gets a flat discount.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/statelink/statelink-backend/internal/app/model"
)

// ServiceCode is what the customer ticks on the selection step.
type ServiceCode string

const (
	CodeAnnualReport       ServiceCode = "ANNUAL_REPORT"
	CodeOperatingAgreement ServiceCode = "OPERATING_AGREEMENT"
	CodeCorporateBylaws    ServiceCode = "CORPORATE_BYLAWS"
	CodeFederalEIN         ServiceCode = "FEDERAL_EIN"
	CodeLaborLawPosterCert ServiceCode = "LABOR_LAW_POSTER_CERT" // poster + certificate bundle
)

var (
	AnnualReportPrice       = decimal.RequireFromString("399.95")
	OperatingAgreementPrice = decimal.RequireFromString("249.95")
	CorporateBylawsPrice    = decimal.RequireFromString("249.95")
	FederalEINPrice         = decimal.RequireFromString("149.95")
	BundlePrice             = decimal.RequireFromString("149.95")

	// The bundle is stored as two lines. The halves sum to BundlePrice.
	LaborLawPosterPrice       = decimal.RequireFromString("74.98")
	CertificateExistencePrice = decimal.RequireFromString("74.97")

	BundleDiscount = decimal.RequireFromString("49.90")
)

var codePrices = map[ServiceCode]decimal.Decimal{
	CodeAnnualReport:       AnnualReportPrice,
	CodeOperatingAgreement: OperatingAgreementPrice,
	CodeCorporateBylaws:    CorporateBylawsPrice,
	CodeFederalEIN:         FederalEINPrice,
	CodeLaborLawPosterCert: BundlePrice,
}

var codeNames = map[ServiceCode]string{
	CodeAnnualReport:       "Annual Report",
	CodeOperatingAgreement: "Operating Agreement",
	CodeCorporateBylaws:    "Corporate Bylaws",
	CodeFederalEIN:         "Federal EIN",
	CodeLaborLawPosterCert: "Labor Law Poster + Certificate of Existence",
}

var linePrices = map[model.RequestType]decimal.Decimal{
	model.RequestTypeAnnualReport:         AnnualReportPrice,
	model.RequestTypeOperatingAgreement:   OperatingAgreementPrice,
	model.RequestTypeCorporateBylaws:      CorporateBylawsPrice,
	model.RequestTypeFederalEIN:           FederalEINPrice,
	model.RequestTypeLaborLawPoster:       LaborLawPosterPrice,
	model.RequestTypeCertificateExistence: CertificateExistencePrice,
}

var canonicalBundles = map[model.BusinessType][]ServiceCode{
	model.BusinessTypeCorp: {CodeCorporateBylaws, CodeFederalEIN, CodeLaborLawPosterCert},
	model.BusinessTypeLLC:  {CodeOperatingAgreement, CodeFederalEIN, CodeLaborLawPosterCert},
}

// ErrUnknownCode is returned for a selection code outside the catalog.
type ErrUnknownCode struct {
	Code ServiceCode
}

func (e ErrUnknownCode) Error() string {
	return fmt.Sprintf("unknown service code %q", e.Code)
}

// ErrNotOffered is returned for a catalog code the business type cannot order.
type ErrNotOffered struct {
	Code         ServiceCode
	BusinessType model.BusinessType
}

func (e ErrNotOffered) Error() string {
	return fmt.Sprintf("service %q is not offered for %s businesses", e.Code, e.BusinessType)
}

// Line is one priced row of a quote.
type Line struct {
	Code  ServiceCode     `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Quote is the pricing breakdown shown on the payment step.
type Quote struct {
	Lines           []Line          `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	DiscountApplied bool            `json:"discount_applied"`
}

func (c ServiceCode) Valid() bool {
	_, ok := codePrices[c]
	return ok
}

func (c ServiceCode) Name() string {
	return codeNames[c]
}

// Expand maps a selection code to the request types it creates.
func Expand(code ServiceCode) []model.RequestType {
	switch code {
	case CodeLaborLawPosterCert:
		return []model.RequestType{model.RequestTypeLaborLawPoster, model.RequestTypeCertificateExistence}
	case CodeAnnualReport, CodeOperatingAgreement, CodeCorporateBylaws, CodeFederalEIN:
		return []model.RequestType{model.RequestType(code)}
	}
	return nil
}

// LinePrice is the price stored on a new ComplianceRequest of type t.
func LinePrice(t model.RequestType) (decimal.Decimal, bool) {
	p, ok := linePrices[t]
	return p, ok
}

// Normalize validates a selection and removes repeats, keeping first-seen order.
func Normalize(selection []ServiceCode) ([]ServiceCode, error) {
	seen := make(map[ServiceCode]bool, len(selection))
	out := make([]ServiceCode, 0, len(selection))
	for _, code := range selection {
		if !code.Valid() {
			return nil, ErrUnknownCode{Code: code}
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

// EligibleForDiscount reports whether selection covers the canonical
// bundle of businessType. Only CORP and LLC have one.
func EligibleForDiscount(selection []ServiceCode, businessType model.BusinessType) bool {
	bundle, ok := canonicalBundles[businessType]
	if !ok {
		return false
	}
	has := make(map[ServiceCode]bool, len(selection))
	for _, code := range selection {
		has[code] = true
	}
	for _, code := range bundle {
		if !has[code] {
			return false
		}
	}
	return true
}

// Calculate prices a selection. The bundle code counts once at BundlePrice.
func Calculate(selection []ServiceCode, businessType model.BusinessType) (Quote, error) {
	codes, err := Normalize(selection)
	if err != nil {
		return Quote{}, err
	}

	lines := make([]Line, 0, len(codes))
	for _, code := range codes {
		lines = append(lines, Line{Code: code, Name: code.Name(), Price: codePrices[code]})
	}
	return finish(lines, EligibleForDiscount(codes, businessType)), nil
}

// CalculateForRequests prices persisted line items. A poster and a
// certificate present together collapse into one bundle line; every other
// request is charged at its stored price. Discount eligibility comes from
// the original selection, not from what was persisted.
func CalculateForRequests(requests []model.ComplianceRequest, selection []ServiceCode, businessType model.BusinessType) Quote {
	var hasPoster, hasCert bool
	for _, r := range requests {
		switch r.RequestType {
		case model.RequestTypeLaborLawPoster:
			hasPoster = true
		case model.RequestTypeCertificateExistence:
			hasCert = true
		}
	}
	paired := hasPoster && hasCert

	lines := make([]Line, 0, len(requests))
	bundled := false
	for _, r := range requests {
		isHalf := r.RequestType == model.RequestTypeLaborLawPoster || r.RequestType == model.RequestTypeCertificateExistence
		if paired && isHalf {
			if !bundled {
				lines = append(lines, Line{Code: CodeLaborLawPosterCert, Name: CodeLaborLawPosterCert.Name(), Price: BundlePrice})
				bundled = true
			}
			continue
		}
		lines = append(lines, Line{Code: ServiceCode(r.RequestType), Name: r.RequestType.Label(), Price: r.Price})
	}

	return finish(lines, EligibleForDiscount(selection, businessType))
}

func finish(lines []Line, eligible bool) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price)
	}

	q := Quote{
		Lines:    lines,
		Subtotal: subtotal.Round(2),
		Discount: decimal.Zero,
		Total:    subtotal.Round(2),
	}
	if eligible {
		q.Discount = BundleDiscount
		q.Total = subtotal.Sub(BundleDiscount).Round(2)
		q.DiscountApplied = true
		if q.Total.IsNegative() {
			q.Total = decimal.Zero
		}
	}
	return q
}

// Offering is a service choice presented for a business.
type Offering struct {
	Code  ServiceCode     `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OfferedServices lists the choices for a business type: the entity
// document (bylaws for CORP, operating agreement for LLC), the EIN, the
// poster bundle, and the annual report.
func OfferedServices(businessType model.BusinessType) []Offering {
	codes := offeredCodes(businessType)
	offers := make([]Offering, 0, len(codes))
	for _, code := range codes {
		offers = append(offers, Offering{Code: code, Name: code.Name(), Price: codePrices[code]})
	}
	return offers
}

func offeredCodes(businessType model.BusinessType) []ServiceCode {
	var codes []ServiceCode
	switch businessType {
	case model.BusinessTypeCorp:
		codes = append(codes, CodeCorporateBylaws)
	case model.BusinessTypeLLC:
		codes = append(codes, CodeOperatingAgreement)
	}
	return append(codes, CodeFederalEIN, CodeLaborLawPosterCert, CodeAnnualReport)
}

// Offered reports whether businessType may order code.
func Offered(code ServiceCode, businessType model.BusinessType) bool {
	for _, c := range offeredCodes(businessType) {
		if c == code {
			return true
		}
	}
	return false
}

// CheckOffered returns ErrNotOffered for the first code of selection that
// businessType cannot order. Unknown codes are reported as ErrUnknownCode.
func CheckOffered(selection []ServiceCode, businessType model.BusinessType) error {
	for _, code := range selection {
		if !code.Valid() {
			return ErrUnknownCode{Code: code}
		}
		if !Offered(code, businessType) {
			return ErrNotOffered{Code: code, BusinessType: businessType}
		}
	}
	return nil
}
