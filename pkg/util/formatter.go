package util

import (
	"fmt"
	"math"
)

// Floater is any value convertible to float64 for display.
type Floater interface {
	Float64() float64
}

// FormatValueFactor prints value with three decimals and an SI prefix.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return fmt.Sprintf("%v %s", value, unit)
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e9:
		return fmt.Sprintf("%.3e %s", value, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f M%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// Format is FormatValueFactor for scalar values.
func Format[F Floater](value F, unit string) string {
	return FormatValueFactor(value.Float64(), unit)
}
