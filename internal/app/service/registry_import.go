package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/statelink/statelink-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// RegistryColumns is the header row the business registry workbook must carry.
// Column order does not matter; reference_id, name and business_type are required.
var RegistryColumns = []string{
	"reference_id", "name", "business_type", "address", "address2", "city", "state_code",
	"zip_code", "registered_agent", "date_formed", "last_filing_date", "status", "missing_filing",
}

// ImportSummary counts what a registry read accepted and skipped.
type ImportSummary struct {
	TotalRows int `json:"total_rows"`
	Valid     int `json:"valid"`
	Skipped   int `json:"skipped"`
	Duplicate int `json:"duplicate"`
}

// ReadRegistryXLSX parses the first sheet of a registry workbook. Rows
// missing a required value or with an unknown business type are skipped;
// a repeated reference keeps its first row.
func ReadRegistryXLSX(r io.Reader) ([]model.Business, ImportSummary, error) {
	var summary ImportSummary

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, summary, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, summary, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"reference_id", "name", "business_type"} {
		if _, ok := index[required]; !ok {
			return nil, summary, fmt.Errorf("missing required column %q", required)
		}
	}

	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var businesses []model.Business
	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		summary.TotalRows++

		ref := strings.ToUpper(cell(row, "reference_id"))
		name := cell(row, "name")
		businessType, ok := parseBusinessType(cell(row, "business_type"))
		if ref == "" || name == "" || !ok {
			summary.Skipped++
			continue
		}
		if seen[ref] {
			summary.Duplicate++
			continue
		}
		seen[ref] = true

		missing, _ := strconv.ParseBool(strings.ToLower(cell(row, "missing_filing")))
		businesses = append(businesses, model.Business{
			ReferenceID:     ref,
			Name:            name,
			BusinessType:    businessType,
			Address:         cell(row, "address"),
			Address2:        cell(row, "address2"),
			City:            cell(row, "city"),
			StateCode:       strings.ToUpper(cell(row, "state_code")),
			ZipCode:         cell(row, "zip_code"),
			RegisteredAgent: cell(row, "registered_agent"),
			DateFormed:      parseDate(cell(row, "date_formed")),
			LastFilingDate:  parseDate(cell(row, "last_filing_date")),
			Status:          defaultString(strings.ToUpper(cell(row, "status")), "ACTIVE"),
			MissingFiling:   missing,
		})
	}

	summary.Valid = len(businesses)
	return businesses, summary, nil
}

func parseBusinessType(s string) (model.BusinessType, bool) {
	switch t := model.BusinessType(strings.ToUpper(s)); t {
	case model.BusinessTypeCorp, model.BusinessTypeLLC, model.BusinessTypeLP,
		model.BusinessTypeNonProfit, model.BusinessTypeOther:
		return t, true
	}
	return "", false
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// paidOrderColumns is the header row of the paid-order export.
var paidOrderColumns = []interface{}{
	"Order Reference", "Transaction ID", "Paid At", "Business Reference", "Business Name",
	"Business Type", "Service", "Price", "Status", "Applicant Name", "Applicant Email",
	"Applicant Phone", "Signature",
}

// BuildPaidOrdersWorkbook renders one row per paid request.
func BuildPaidOrdersWorkbook(requests []model.ComplianceRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Paid Orders"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &paidOrderColumns); err != nil {
		return nil, err
	}

	for i, r := range requests {
		var paidAt string
		if r.PaidAt != nil {
			paidAt = r.PaidAt.UTC().Format(time.RFC3339)
		}
		var businessName, businessType string
		if r.Business != nil {
			businessName = r.Business.Name
			businessType = string(r.Business.BusinessType)
		}

		row := []interface{}{
			r.OrderReferenceNumber,
			r.TransactionID,
			paidAt,
			r.BusinessReferenceID,
			businessName,
			businessType,
			r.RequestType.Label(),
			r.Price.StringFixed(2),
			string(r.Status),
			strings.TrimSpace(r.ApplicantFirstName + " " + r.ApplicantLastName),
			r.ApplicantEmail,
			r.ApplicantPhoneNumber,
			r.ClientSignatureText,
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
