package quality

import (
	"strconv"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

type Measure string

const (
	MeasureMicrometry  Measure = "micrometry"
	MeasureSurfaceMass Measure = "surfaceMass"
	MeasureDryExtract  Measure = "dryExtract"
)

func valueDecimals(m Measure) int {
	switch m {
	case MeasureMicrometry:
		return 0
	case MeasureSurfaceMass:
		return 4
	default:
		return 2
	}
}

func averageDecimals(m Measure) int {
	if m == MeasureSurfaceMass {
		return 4
	}
	return 2
}

// FormatValue renders an entered value with its measure's precision.
func FormatValue(v *float64, m Measure) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', valueDecimals(m), 64)
}

// FormatAverage renders an average, or "--" when it cannot be computed yet.
func FormatAverage(v *float64, m Measure) string {
	if v == nil {
		return "--"
	}
	return strconv.FormatFloat(*v, 'f', averageDecimals(m), 64)
}

func StatusClass(s domain.MeasureStatus) string {
	switch s {
	case domain.MeasureSuccess:
		return "text-success"
	case domain.MeasureWarning:
		return "text-warning"
	case domain.MeasureError:
		return "text-danger"
	case domain.MeasureEmpty:
		return "text-muted"
	default:
		return ""
	}
}

// Badge is the QC status chip of the sticky bar.
type Badge struct {
	Class string `json:"class"`
	Text  string `json:"text"`
	Icon  string `json:"icon"`
}

func BadgeFor(s domain.QCStatus) Badge {
	switch s {
	case domain.QCPassed:
		return Badge{Class: "badge bg-success", Text: "QC Passed", Icon: "bi-check-circle-fill"}
	case domain.QCFailed:
		return Badge{Class: "badge bg-danger", Text: "QC Failed", Icon: "bi-x-circle-fill"}
	default:
		return Badge{Class: "badge bg-secondary", Text: "QC Pending", Icon: "bi-clock-fill"}
	}
}
