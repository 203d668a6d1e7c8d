package forecast

import (
	"strconv"
	"time"
)

// MonthCount is the number of release months swept per evaluation.
const MonthCount = 12

// Month is a zero-based release month: 0 is January, 11 is December.
type Month int

func (m Month) Valid() bool { return m >= 0 && m < MonthCount }

func (m Month) String() string {
	if !m.Valid() {
		return "Month(" + strconv.Itoa(int(m)) + ")"
	}
	return time.Month(m + 1).String()
}

func monthFieldNames() []string {
	names := make([]string, MonthCount)
	for m := 0; m < MonthCount; m++ {
		names[m] = Month(m).String()
	}
	return names
}

// monthIndicators holds the twelve one-hot vectors, built once.
var monthIndicators = buildMonthIndicators()

func buildMonthIndicators() [MonthCount]Vector {
	var out [MonthCount]Vector
	for m := 0; m < MonthCount; m++ {
		values := make([]float64, MonthCount)
		values[m] = 1
		out[m] = Vector{schema: MonthSchema, values: values}
	}
	return out
}

// EncodeMonth returns the one-hot indicator vector for m.
func EncodeMonth(m Month) (Vector, error) {
	if !m.Valid() {
		return Vector{}, &ValidationError{
			Field:  "month",
			Value:  strconv.Itoa(int(m)),
			Reason: "must be between 0 and 11",
		}
	}
	return monthIndicators[m], nil
}
