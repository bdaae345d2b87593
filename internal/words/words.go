// Package words spells out invoice totals using the Indian numbering system
// (thousand, lakh, crore). The frontend lets users type this field by hand;
// the server fills it in when left blank.
package words

import (
	"math"
	"strings"
)

var below20 = []string{
	"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

func twoDigits(n int64) string {
	if n < 20 {
		return below20[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + below20[n%10]
}

func threeDigits(n int64) string {
	if n < 100 {
		return twoDigits(n)
	}
	out := below20[n/100] + " Hundred"
	if rem := n % 100; rem != 0 {
		out += " " + twoDigits(rem)
	}
	return out
}

// integer spells a non-negative integer with Indian grouping.
func integer(n int64) string {
	if n < 1000 {
		return threeDigits(n)
	}
	type scale struct {
		value int64
		name  string
	}
	scales := []scale{
		{1e7, "Crore"},
		{1e5, "Lakh"},
		{1e3, "Thousand"},
	}
	var parts []string
	for _, s := range scales {
		if n >= s.value {
			parts = append(parts, integer(n/s.value)+" "+s.name)
			n %= s.value
		}
	}
	if n > 0 {
		parts = append(parts, threeDigits(n))
	}
	return strings.Join(parts, " ")
}

// Rupees spells an amount as "<rupees> Rupees [and <paise> Paise] Only".
// Negative amounts are spelled by magnitude with a leading "Minus".
func Rupees(amount float64) string {
	prefix := ""
	if amount < 0 {
		prefix = "Minus "
		amount = -amount
	}
	total := math.Round(amount * 100)
	rupees := int64(total) / 100
	paise := int64(total) % 100

	out := prefix + integer(rupees) + " Rupees"
	if paise > 0 {
		out += " and " + twoDigits(paise) + " Paise"
	}
	return out + " Only"
}
