package service

import "strings"

// ValidateCPF checks the 11-digit national person identifier: repeated
// digits are rejected outright, then both check digits are recomputed
// with the modulus-11 weighting.
func ValidateCPF(cpf string) bool {
	digits := onlyDigits(cpf)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	if checkDigit(sum) != int(digits[9]-'0') {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * (11 - i)
	}
	return checkDigit(sum) == int(digits[10]-'0')
}

// ValidateCNPJ checks the 14-digit national company identifier with its
// cyclic 2..9 weighting.
func ValidateCNPJ(cnpj string) bool {
	digits := onlyDigits(cnpj)
	if len(digits) != 14 {
		return false
	}
	if allSame(digits) {
		return false
	}

	if cnpjDigit(digits, 12) != int(digits[12]-'0') {
		return false
	}
	return cnpjDigit(digits, 13) == int(digits[13]-'0')
}

func cnpjDigit(digits string, length int) int {
	sum := 0
	weight := 2
	for i := length - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		if weight == 9 {
			weight = 2
		} else {
			weight++
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func checkDigit(sum int) int {
	remainder := 11 - (sum % 11)
	if remainder >= 10 {
		return 0
	}
	return remainder
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
