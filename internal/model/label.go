package model

import (
	"strings"
)

// Labels are free-form color tags such as "#AFD9FF".

// LeadLabel marks tasks created from the public contact form
const LeadLabel = "#2F4F6F"

// NormalizeLabel trims the label and upper-cases hex color tags so "#afd9ff"
// and "#AFD9FF" compare equal
func NormalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if strings.HasPrefix(label, "#") {
		return strings.ToUpper(label)
	}
	return label
}

// IsColorLabel returns true if the label is a #RGB or #RRGGBB hex color
func IsColorLabel(label string) bool {
	if !strings.HasPrefix(label, "#") {
		return false
	}
	hex := label[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
