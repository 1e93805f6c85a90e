package roll

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// FormatThickness renders a thickness with a decimal comma, truncated to one
// decimal: 5.27 -> "5,2", 6 -> "6,0".
func FormatThickness(v float64) string {
	// 1e-9 absorbs binary rounding of one-decimal inputs such as 4.1.
	truncated := math.Floor(v*10+1e-9) / 10
	s := strconv.FormatFloat(truncated, 'f', -1, 64)
	s = strings.Replace(s, ".", ",", 1)
	if !strings.Contains(s, ",") {
		s += ",0"
	}
	return s
}

var defectCodes = map[string]string{
	"trou":           "TRO",
	"déchirure":      "DEC",
	"tache":          "TAC",
	"pli":            "PLI",
	"corps étranger": "CE",
	"surépaisseur":   "SUR",
	"manque matière": "MM",
}

// FormatDefectCode is the short code printed in a tagged cell.
func FormatDefectCode(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if code, ok := defectCodes[strings.ToLower(n)]; ok {
		return code
	}
	var b strings.Builder
	count := 0
	for _, r := range n {
		if count == 3 {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
		count++
	}
	return b.String()
}

// FormatDefectsList summarises tags by type name in first-seen order, e.g.
// "Trou (2), Tache". An empty roll gives "--".
func FormatDefectsList(defects []domain.Defect) string {
	if len(defects) == 0 {
		return "--"
	}
	counts := make(map[string]int)
	var order []string
	for _, d := range defects {
		name := d.TypeName
		if name == "" {
			name = "Inconnu"
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		if counts[name] > 1 {
			parts = append(parts, fmt.Sprintf("%s (%d)", name, counts[name]))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

// ThicknessClass is the display status of a value against the profile's
// thickness band. It only colours the input; rejection uses NokThreshold.
func ThicknessClass(v float64, band *domain.Thresholds) domain.MeasureStatus {
	if band == nil {
		if IsNok(v) {
			return domain.MeasureError
		}
		return domain.MeasureSuccess
	}
	switch {
	case v < band.Min || v > band.Max:
		return domain.MeasureError
	case v < band.MinAlert || v > band.MaxAlert:
		return domain.MeasureWarning
	default:
		return domain.MeasureSuccess
	}
}
