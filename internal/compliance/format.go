package compliance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English thousand separators
var printer = message.NewPrinter(language.English)

// FormatTonnes formats a tCO2e value with thousand separators and the given precision.
// Example: FormatTonnes(25000, 0) returns "25,000".
func FormatTonnes(f float64, precision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	multiplier := math.Pow(10, float64(precision))
	rounded := math.Round(f*multiplier) / multiplier

	if precision <= 0 {
		return printer.Sprintf("%d", int64(rounded))
	}

	formatted := fmt.Sprintf("%.*f", precision, rounded)
	intPart, fracPart, ok := strings.Cut(formatted, ".")
	if !ok {
		return formatted
	}

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return formatted
	}

	sign := ""
	if n == 0 && strings.HasPrefix(intPart, "-") {
		sign = "-"
	}
	return sign + printer.Sprintf("%d", n) + "." + fracPart
}
