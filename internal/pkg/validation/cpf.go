package validation

import "strings"

// IsValidCPF checks the two CPF check digits. Dots and dashes are ignored.
func IsValidCPF(raw string) bool {
	cpf := strings.NewReplacer(".", "", "-", "").Replace(strings.TrimSpace(raw))
	if len(cpf) != 11 {
		return false
	}

	digits := make([]int, 11)
	allEqual := true
	for i, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if digits[i] != digits[0] {
			allEqual = false
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(digits[:9], 10) == digits[9] && checkDigit(digits[:10], 11) == digits[10]
}

func checkDigit(digits []int, weight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (weight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
