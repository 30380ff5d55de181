package services

import "fmt"

// Format abbreviates value for metric display: thousands become "mil", millions
// "milhões". The result is always "<prefix> <value> <unit>", even with an empty
// prefix or unit, so Format(950, "") is " 950.00 ".
func Format(value float64, prefix string) string {
	for _, unit := range []string{"", "mil"} {
		if value < 1000 {
			return fmt.Sprintf("%s %.2f %s", prefix, value, unit)
		}
		value /= 1000
	}
	return fmt.Sprintf("%s %.2f milhões", prefix, value)
}
