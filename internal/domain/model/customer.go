package model

import "regexp"

var taxIDPattern = regexp.MustCompile(`^\d{10}$`)

// ValidTaxID reports whether tin is exactly ten decimal digits.
func ValidTaxID(tin string) bool {
	return taxIDPattern.MatchString(tin)
}

type CustomerQuery struct {
	TaxID          string
	OrganizationID string
}

// CustomerDetailsRequest carries the query_customer_details arguments.
type CustomerDetailsRequest struct {
	Doc          string `json:"doc"`
	ECompanyName string `json:"e_company_name"`
	TaxID        string `json:"tax_id"`
	NinBrn       string `json:"ninBrn"`
}

type TaxpayerRecord struct {
	LegalName string `json:"legalName"`
}
