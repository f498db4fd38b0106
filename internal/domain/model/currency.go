package model

import "strings"

// Currency is an ISO 4217 alphabetic code as entered on a document.
type Currency string

// Normalize trims and upper-cases the code.
func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

// IsValid reports whether c is three ASCII letters after normalization.
func (c Currency) IsValid() bool {
	code := c.Normalize()
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c Currency) String() string {
	return string(c)
}
