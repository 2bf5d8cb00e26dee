package profile

import "time"

// zodiacBounds lists the last day of each sign, in calendar order.
var zodiacBounds = []struct {
	month int
	day   int
	sign  string
}{
	{1, 20, "Oğlak"}, {2, 19, "Kova"}, {3, 20, "Balık"}, {4, 20, "Koç"},
	{5, 21, "Boğa"}, {6, 21, "İkizler"}, {7, 23, "Yengeç"}, {8, 23, "Aslan"},
	{9, 23, "Başak"}, {10, 23, "Terazi"}, {11, 22, "Akrep"}, {12, 22, "Yay"},
	{12, 31, "Oğlak"},
}

// ZodiacSign returns the Turkish zodiac sign name for a birthdate.
func ZodiacSign(birth time.Time) string {
	month, day := int(birth.Month()), birth.Day()
	for _, b := range zodiacBounds {
		if (month == b.month && day <= b.day) || (month == b.month-1 && day > b.day) {
			return b.sign
		}
	}
	return "Bilinmiyor"
}

// Age returns full years between birth and now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
