package asuswmi

// Fan curves are managed locally: the firmware's curve device IDs
// exchange multi-field byte buffers over WMI, which is deliberately not
// implemented. Only the built-in default curve is exposed.

// FanCurvePoints is the number of control points in an ASUS fan curve.
const FanCurvePoints = 8

// FanCurvePoint maps a temperature threshold to a fan duty cycle.
type FanCurvePoint struct {
	TempC   uint8 `json:"temp_c"`
	DutyPct uint8 `json:"duty_pct"`
}

// FanCurve is a complete curve for one fan header, points sorted by
// ascending temperature. The controller interpolates between points.
type FanCurve struct {
	Target FanTarget                     `json:"target"`
	Points [FanCurvePoints]FanCurvePoint `json:"points"`
}

// DefaultFanCurve is a gentle ramp from 30 % duty at 30 °C to full speed
// at 90 °C.
func DefaultFanCurve(target FanTarget) FanCurve {
	return FanCurve{
		Target: target,
		Points: [FanCurvePoints]FanCurvePoint{
			{TempC: 30, DutyPct: 30},
			{TempC: 40, DutyPct: 35},
			{TempC: 50, DutyPct: 45},
			{TempC: 60, DutyPct: 55},
			{TempC: 70, DutyPct: 65},
			{TempC: 75, DutyPct: 75},
			{TempC: 80, DutyPct: 85},
			{TempC: 90, DutyPct: 100},
		},
	}
}
