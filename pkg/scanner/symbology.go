package scanner

import "fmt"

// SymbologyDecoder validates captures against the retail symbologies the POS
// accepts: EAN-13, EAN-8, UPC-A, UPC-E, Code 39 and Code 128.
type SymbologyDecoder struct{}

// Decode classifies raw. GTIN formats must pass their mod-10 checksum;
// Code 39 and Code 128 are charset-validated only.
func (SymbologyDecoder) Decode(raw string) (string, Symbology, error) {
	if raw == "" {
		return "", "", fmt.Errorf("scanner: empty capture")
	}

	// A digit string of GTIN length is either a valid GTIN or a misread;
	// it never falls through to the free-text symbologies.
	if allDigits(raw) {
		switch len(raw) {
		case 13:
			if gtinChecksum(raw) {
				return raw, SymbologyEAN13, nil
			}
			return "", "", fmt.Errorf("scanner: EAN-13 checksum failed for %q", raw)
		case 12:
			if gtinChecksum(raw) {
				return raw, SymbologyUPCA, nil
			}
			return "", "", fmt.Errorf("scanner: UPC-A checksum failed for %q", raw)
		case 8:
			if gtinChecksum(raw) {
				return raw, SymbologyEAN8, nil
			}
			if expanded, ok := expandUPCE(raw); ok && gtinChecksum(expanded) {
				return raw, SymbologyUPCE, nil
			}
			return "", "", fmt.Errorf("scanner: checksum failed for %q", raw)
		}
	}

	if isCode39(raw) {
		return raw, SymbologyCode39, nil
	}
	if isCode128(raw) {
		return raw, SymbologyCode128, nil
	}
	return "", "", fmt.Errorf("scanner: unrecognized capture %q", raw)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// gtinChecksum validates the mod-10 check digit shared by EAN-13, EAN-8 and
// UPC-A: weights alternate 3,1 from the digit left of the check digit.
func gtinChecksum(digits string) bool {
	sum := 0
	weight := 3
	for i := len(digits) - 2; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight = 4 - weight
	}
	check := (10 - sum%10) % 10
	return check == int(digits[len(digits)-1]-'0')
}

// expandUPCE lifts an 8-digit UPC-E code to its UPC-A equivalent so the
// shared checksum applies. Number system must be 0 or 1.
func expandUPCE(code string) (string, bool) {
	ns := code[0]
	if ns != '0' && ns != '1' {
		return "", false
	}
	body, check := code[1:7], code[7:]

	var middle string
	switch body[5] {
	case '0', '1', '2':
		middle = body[:2] + string(body[5]) + "0000" + body[2:5]
	case '3':
		middle = body[:3] + "00000" + body[3:5]
	case '4':
		middle = body[:4] + "00000" + string(body[4])
	default:
		middle = body[:5] + "0000" + string(body[5])
	}
	return string(ns) + middle + check, true
}

const code39Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 -.$/+%"

func isCode39(s string) bool {
	for _, r := range s {
		found := false
		for _, c := range code39Charset {
			if r == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(s) > 0
}

// isCode128 accepts any printable ASCII payload.
func isCode128(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return len(s) > 0
}
