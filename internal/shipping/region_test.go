package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dough-store/internal/models"
	"dough-store/internal/shipping"
)

func TestClassify(t *testing.T) {
	cases := map[string]shipping.Region{
		"9500-321": shipping.RegionAzores,
		"9700-001": shipping.RegionAzores,
		"9800-100": shipping.RegionAzores,
		"9900-014": shipping.RegionAzores,
		"9950-302": shipping.RegionAzores,
		"9000-018": shipping.RegionMadeira,
		"9100-150": shipping.RegionMadeira,
		"9300-138": shipping.RegionMadeira,
		"28013":    shipping.RegionSpainPeninsula,
		"41001":    shipping.RegionSpainPeninsula,
		"52001":    shipping.RegionSpainPeninsula,
		"07001":    shipping.RegionSpainOther,
		"35001":    shipping.RegionSpainPeninsula,
		"38001":    shipping.RegionSpainPeninsula,
		"91234":    shipping.RegionSpainOther,
		"99001":    shipping.RegionSpainOther,
		"15001":    shipping.RegionContinental,
		"60001":    shipping.RegionContinental,
		"70001":    shipping.RegionContinental,
		"80001":    shipping.RegionContinental,
		"90123":    shipping.RegionContinental,
		"1000-001": shipping.RegionContinental,
		"4000-322": shipping.RegionContinental,
		"8000":     shipping.RegionContinental,
		"":         shipping.RegionContinental,
		"   ":      shipping.RegionContinental,
		"abc-def":  shipping.RegionContinental,
		"12":       shipping.RegionContinental,
	}
	for code, want := range cases {
		require.Equal(t, want, shipping.Classify(code), "postal code %q", code)
	}
}

func TestClassify_AzoresBeatsBroaderPatterns(t *testing.T) {
	// five digits would otherwise be read as a Spanish code
	require.Equal(t, shipping.RegionAzores, shipping.Classify("95012"))
	require.Equal(t, shipping.RegionMadeira, shipping.Classify("90012"))
}

func TestClassify_Idempotent(t *testing.T) {
	for _, code := range []string{"9500-321", "28013", "1000-001", "x"} {
		require.Equal(t, shipping.Classify(code), shipping.Classify(code))
	}
}

func TestClassify_PortuguesePrefixBeatsSpanishFallback(t *testing.T) {
	calc := shipping.NewCalculator()
	for _, code := range []string{"15001", "60001", "70001", "80001"} {
		require.Equal(t, shipping.RegionContinental, shipping.Classify(code), code)
		require.Equal(t, "5.58", calc.CalculateByPostalCode(code, models.DeliveryHome, 1).StringFixed(2), code)
	}
	require.Equal(t, shipping.RegionSpainOther, shipping.Classify("01001"))
}
