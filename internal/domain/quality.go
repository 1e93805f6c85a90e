package domain

// Thresholds is a five-point tolerance band: [Min, Max] decides pass/fail,
// [MinAlert, MaxAlert] only decides the warning indicator.
type Thresholds struct {
	Min      float64 `json:"min" yaml:"min"`
	MinAlert float64 `json:"minAlert" yaml:"min_alert"`
	Nominal  float64 `json:"nominal" yaml:"nominal"`
	MaxAlert float64 `json:"maxAlert" yaml:"max_alert"`
	Max      float64 `json:"max" yaml:"max"`
}

// QCThresholds groups the bands of the three quality-control measures.
type QCThresholds struct {
	Micrometry  Thresholds `json:"micrometry" yaml:"micrometry"`
	SurfaceMass Thresholds `json:"surfaceMass" yaml:"surface_mass"`
	DryExtract  Thresholds `json:"dryExtract" yaml:"dry_extract"`
}

type QCStatus string

const (
	QCPending QCStatus = "pending"
	QCPassed  QCStatus = "passed"
	QCFailed  QCStatus = "failed"
)

// MeasureStatus is the display classification of one value.
type MeasureStatus string

const (
	MeasureEmpty   MeasureStatus = "empty"
	MeasureSuccess MeasureStatus = "success"
	MeasureWarning MeasureStatus = "warning"
	MeasureError   MeasureStatus = "error"
)

// Micrometry holds the left and right triads.
type Micrometry struct {
	Left         [3]*float64 `json:"left"`
	Right        [3]*float64 `json:"right"`
	AverageLeft  *float64    `json:"averageLeft"`
	AverageRight *float64    `json:"averageRight"`
}

// SurfaceMass holds the four weighing points, two per side.
type SurfaceMass struct {
	LeftLeft     *float64 `json:"leftLeft"`
	LeftCenter   *float64 `json:"leftCenter"`
	RightCenter  *float64 `json:"rightCenter"`
	RightRight   *float64 `json:"rightRight"`
	AverageLeft  *float64 `json:"averageLeft"`
	AverageRight *float64 `json:"averageRight"`
}

// DryExtract holds the single value and the LOI sample flag. Sample stays nil
// until the operator answers it.
type DryExtract struct {
	Value           *float64 `json:"value"`
	Sample          *bool    `json:"sample"`
	ValueTimestamp  *string  `json:"timestamp"`
	SampleTimestamp *string  `json:"loiTimestamp"`
}

// QualityControl is the panel state persisted under quality_control.
type QualityControl struct {
	Micrometry  Micrometry  `json:"micrometry"`
	SurfaceMass SurfaceMass `json:"surfaceMass"`
	DryExtract  DryExtract  `json:"dryExtract"`
	Status      QCStatus    `json:"status"`
}
