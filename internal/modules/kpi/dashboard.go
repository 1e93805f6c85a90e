package kpi

import "fmt"

// Snapshot is the KPI block rendered by the console.
type Snapshot struct {
	OpeningMinutes   int     `json:"openingTime"`
	LostMinutes      int     `json:"totalLostTime"`
	AvailableMinutes int     `json:"availableTime"`
	Availability     float64 `json:"availabilityRate"`
	Performance      float64 `json:"performanceRate"`
	Quality          float64 `json:"qualityRate"`
	OEE              float64 `json:"oeeRate"`
	TRSClass         string  `json:"trsClass"`
	TotalLength      float64 `json:"totalLength"`
	ConformRolls     int     `json:"conformRolls"`
	TotalRolls       int     `json:"totalRolls"`
	BeltSpeed        float64 `json:"beltSpeed"`
	Theoretical      float64 `json:"theoreticalProduction"`
	Productivity     float64 `json:"productivity"`
	ScrapRate        float64 `json:"scrapRate"`
	AvailableLabel   string  `json:"formattedAvailableTime"`
	AvailableDetails string  `json:"availabilityDetails"`
}

// Dashboard accumulates the shift's production figures. Each displayed rate is
// rounded before it feeds the OEE, as the operators read them.
// Not safe for concurrent use.
type Dashboard struct {
	openingMin   int
	lostMin      int
	totalLength  float64
	conformRolls int
	totalRolls   int
	beltSpeed    float64
}

func NewDashboard() *Dashboard {
	return &Dashboard{openingMin: DefaultOpeningMinutes}
}

// SetShiftHours derives the opening time from the shift clock times. Empty times
// keep the current opening time.
func (d *Dashboard) SetShiftHours(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	min, err := ShiftDuration(start, end)
	if err != nil {
		return fmt.Errorf("shift hours: %w", err)
	}
	d.openingMin = min
	return nil
}

func (d *Dashboard) SetLostTime(totalMin int) {
	if totalMin < 0 {
		totalMin = 0
	}
	d.lostMin = totalMin
}

// SetBeltSpeed takes the belt speed in m/min.
func (d *Dashboard) SetBeltSpeed(mPerMin float64) {
	if mPerMin < 0 {
		mPerMin = 0
	}
	d.beltSpeed = mPerMin
}

// SetProduction replaces the production totals, used when a console reloads.
func (d *Dashboard) SetProduction(totalLength float64, conform, total int) {
	d.totalLength = totalLength
	d.conformRolls = conform
	d.totalRolls = total
}

// RecordRoll adds a saved roll to the production totals.
func (d *Dashboard) RecordRoll(length float64, conform bool) {
	if length > 0 {
		d.totalLength += length
	}
	d.totalRolls++
	if conform {
		d.conformRolls++
	}
}

func (d *Dashboard) Snapshot() Snapshot {
	available := d.openingMin - d.lostMin
	if available < 0 {
		available = 0
	}
	theoretical := TheoreticalProduction(d.beltSpeed, float64(available))
	a := Round1(Availability(float64(d.openingMin), float64(d.lostMin)))
	p := Round1(Performance(d.totalLength, theoretical))
	q := Round1(Quality(d.conformRolls, d.totalRolls))
	oee := Round1(OEE(a, p, q))
	return Snapshot{
		OpeningMinutes:   d.openingMin,
		LostMinutes:      d.lostMin,
		AvailableMinutes: available,
		Availability:     a,
		Performance:      p,
		Quality:          q,
		OEE:              oee,
		TRSClass:         TRSClass(oee),
		TotalLength:      d.totalLength,
		ConformRolls:     d.conformRolls,
		TotalRolls:       d.totalRolls,
		BeltSpeed:        d.beltSpeed,
		Theoretical:      theoretical,
		Productivity:     Productivity(d.totalLength, float64(d.openingMin), float64(d.lostMin)),
		ScrapRate:        Round1(ScrapRate(d.conformRolls, d.totalRolls)),
		AvailableLabel:   FormatMinutes(available),
		AvailableDetails: fmt.Sprintf("%d min / %d min", available, d.openingMin),
	}
}
