package hr

import "strings"

// LeaveWeights maps a leave type to the days it consumes. Types not listed
// consume one day.
var LeaveWeights = map[string]float64{
	"FULL DAY":              1,
	"HALF DAY":              0.5,
	"COMPENSATION HALF DAY": 0.5,
	"2 HRS":                 0.25,
	"COMPENSATION 2 HRS":    0.25,
}

// LeaveWeight returns the days one leave of leaveType consumes.
func LeaveWeight(leaveType string) float64 {
	if w, ok := LeaveWeights[strings.ToUpper(strings.TrimSpace(leaveType))]; ok {
		return w
	}
	return 1
}

// computeBalance derives a balance from the opening balance and approved
// counts per leave type.
func computeBalance(opening float64, counts []TypeUsage) (used, balance float64, byType []TypeUsage) {
	byType = make([]TypeUsage, 0, len(counts))
	for _, c := range counts {
		c.Weight = LeaveWeight(c.LeaveType)
		c.Days = float64(c.Count) * c.Weight
		used += c.Days
		byType = append(byType, c)
	}
	return used, opening - used, byType
}
