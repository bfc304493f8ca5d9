package shipping

import (
	"regexp"
	"strings"
)

type Region string

const (
	RegionContinental    Region = "continental"
	RegionAzores         Region = "azores"
	RegionMadeira        Region = "madeira"
	RegionSpainPeninsula Region = "spain-peninsula"
	RegionSpainOther     Region = "spain-other"
)

var (
	azoresRe         = regexp.MustCompile(`^(950|970|980|990|995)\d{2}`)
	madeiraRe        = regexp.MustCompile(`^(900|910|930)\d{2}`)
	spainPeninsulaRe = regexp.MustCompile(`^[2-5]\d{4}$`)
	continentalRe    = regexp.MustCompile(`^[1-9]\d{3}`)
	islandBlockRe    = regexp.MustCompile(`^9[1-9]\d{2}`)
	spainOtherRe     = regexp.MustCompile(`^\d{5}$`)
)

// Classify maps a raw postal code to its rate region. It never fails:
// anything it does not recognise is continental.
// Order matters: island prefixes overlap every broader pattern, and a
// Portuguese 4-digit prefix wins over the remaining Spanish 5-digit codes.
func Classify(postalCode string) Region {
	code := digitsOnly(postalCode)

	switch {
	case azoresRe.MatchString(code):
		return RegionAzores
	case madeiraRe.MatchString(code):
		return RegionMadeira
	case spainPeninsulaRe.MatchString(code):
		return RegionSpainPeninsula
	case continentalRe.MatchString(code) && !islandBlockRe.MatchString(code):
		return RegionContinental
	case spainOtherRe.MatchString(code):
		return RegionSpainOther
	default:
		return RegionContinental
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
