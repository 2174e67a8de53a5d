package validate

import "strconv"

// RIB checks a Moroccan RIB: exactly 24 digits, and the 2-digit key
// must satisfy (base*100 + key) mod 97 == 0 over the first 22 digits.
func RIB(raw string) (bool, string) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) != 24 {
		return false, "a Moroccan RIB must have exactly 24 digits"
	}

	// 22-digit base exceeds int64; fold the modulus incrementally.
	base := 0
	for i := 0; i < 22; i++ {
		base = (base*10 + int(digits[i]-'0')) % 97
	}
	key, err := strconv.Atoi(digits[22:])
	if err != nil {
		return false, "invalid RIB digits"
	}

	if (base*100+key)%97 == 0 {
		return true, "RIB valid"
	}
	return false, "incorrect RIB key"
}
