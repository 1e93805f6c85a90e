package roll

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// DefaultFeltWidth is the felt width in meters used when the profile gives none.
const DefaultFeltWidth = 1.0

// NetMass is total minus tube mass, or nil unless both are positive and the total
// exceeds the tube.
func NetMass(total, tube *float64) *float64 {
	if total == nil || tube == nil {
		return nil
	}
	if *total <= 0 || *tube <= 0 || *total <= *tube {
		return nil
	}
	v := *total - *tube
	return &v
}

// MassInvalid reports a total mass lighter than its tube.
func MassInvalid(total, tube *float64) bool {
	if total == nil || tube == nil || *total == 0 || *tube == 0 {
		return false
	}
	return *total < *tube
}

// Grammage is the surface mass of the roll, rounded to one decimal as displayed.
// ok is false when any input is missing or not positive.
func Grammage(netMass, length, width float64) (value float64, ok bool) {
	if width <= 0 {
		width = DefaultFeltWidth
	}
	if netMass <= 0 || length <= 0 {
		return 0, false
	}
	return math.Round(netMass/(length*width)*10) / 10, true
}

func FormatGrammage(v float64) string {
	return fmt.Sprintf("%.1f g/m²", v)
}

// WeightNok reports a grammage outside the profile's global surface-mass band.
// Without a band every grammage is accepted.
func WeightNok(grammage float64, band *domain.Thresholds) bool {
	if band == nil {
		return false
	}
	return grammage < band.Min || grammage > band.Max
}

// RollID is "<OF>_<nnn>", or empty when either part is missing.
func RollID(fabricationOrder string, rollNumber int) string {
	of := strings.TrimSpace(fabricationOrder)
	if of == "" || rollNumber <= 0 {
		return ""
	}
	return fmt.Sprintf("%s_%03d", of, rollNumber)
}

// CuttingRollID names a non-conforming roll sent to the cutting order. The preview
// carries the date only; the saved id adds the time so that several rejected
// rolls of one day stay distinct.
func CuttingRollID(cuttingOrder string, at time.Time, withTime bool) string {
	of := strings.TrimSpace(cuttingOrder)
	if of == "" {
		return ""
	}
	if withTime {
		return fmt.Sprintf("%s_%s", of, at.Format("020106_150405"))
	}
	return fmt.Sprintf("%s_%s", of, at.Format("020106"))
}
