// internal/models/listing.go
package models

import (
	"strings"

	"github.com/google/uuid"
)

// StartupListing is the investor-facing display record for one analyzed startup.
type StartupListing struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Industry        string                 `json:"industry"`
	Location        string                 `json:"location"`
	InvestmentStage string                 `json:"investmentStage"`
	Prediction      string                 `json:"prediction"`
	Logo            string                 `json:"logo"`
	Raw             map[string]interface{} `json:"raw"`
}

// ListingFromRaw maps a raw record from GET /startups into a display record.
func ListingFromRaw(raw map[string]interface{}) StartupListing {
	name := rawString(raw, FieldOrganizationName, "Unknown")
	return StartupListing{
		ID:              ListingID(name),
		Name:            name,
		Industry:        rawString(raw, FieldIndustries, "N/A"),
		Location:        rawString(raw, FieldHeadquartersLocation, "N/A"),
		InvestmentStage: rawString(raw, FieldInvestmentStage, "N/A"),
		Prediction:      rawString(raw, "prediction", "N/A"),
		Logo:            LogoPlaceholder(name),
		Raw:             raw,
	}
}

// LogoPlaceholder returns up to two uppercase initials of name.
func LogoPlaceholder(name string) string {
	words := strings.Fields(name)
	initials := make([]rune, 0, 2)
	for _, w := range words {
		initials = append(initials, []rune(strings.ToUpper(w))[0])
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

func rawString(raw map[string]interface{}, key, fallback string) string {
	if v, ok := raw[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// ListingID derives a stable listing ID from the organization name: a
// readable slug plus a short hash of the exact name, so names that differ
// only in punctuation or case stay distinct.
func ListingID(name string) string {
	sum := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	return slug(name) + "-" + sum[:8]
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	if b.Len() == 0 {
		return "startup"
	}
	return strings.TrimSuffix(b.String(), "-")
}
