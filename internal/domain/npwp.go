package domain

import (
	"errors"
	"strings"
)

var (
	ErrNPWPEmpty         = errors.New("npwp: number is required")
	ErrNPWPLength        = errors.New("npwp: number must have 15 digits")
	ErrNPWPTaxpayerType  = errors.New("npwp: invalid taxpayer type")
	ErrNPWPCheckDigit    = errors.New("npwp: invalid check digit")
	validNPWPTaxpayerIDs = map[string]bool{
		"01": true, "02": true, "03": true, "04": true, "05": true,
		"06": true, "07": true, "08": true, "09": true,
		"31": true, "32": true, "33": true, "34": true, "35": true,
	}
)

// CleanNPWP strips everything but digits.
func CleanNPWP(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatNPWP renders up to 15 digits as XX.XXX.XXX.X-XXX.XXX, formatting
// partial input progressively.
func FormatNPWP(v string) string {
	d := CleanNPWP(v)
	if len(d) > 15 {
		d = d[:15]
	}
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 5:
		return d[:2] + "." + d[2:]
	case len(d) <= 8:
		return d[:2] + "." + d[2:5] + "." + d[5:]
	case len(d) <= 9:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "." + d[8:]
	case len(d) <= 12:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "." + d[8:9] + "-" + d[9:]
	default:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "." + d[8:9] + "-" + d[9:12] + "." + d[12:]
	}
}

// ValidateNPWP returns nil for a well-formed number. Taxpayer type and check
// digit problems are reported together.
func ValidateNPWP(v string) error {
	d := CleanNPWP(v)
	if d == "" {
		return ErrNPWPEmpty
	}
	if len(d) != 15 {
		return ErrNPWPLength
	}

	var errs []error
	if !validNPWPTaxpayerIDs[d[:2]] {
		errs = append(errs, ErrNPWPTaxpayerType)
	}
	if int(d[8]-'0') != npwpCheckDigit(d) {
		errs = append(errs, ErrNPWPCheckDigit)
	}
	return errors.Join(errs...)
}

func npwpCheckDigit(d string) int {
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(d[i]-'0') * (i + 1)
	}
	rem := sum % 11
	if rem < 2 {
		return rem
	}
	return 11 - rem
}
