package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var warsaw = loadWarsaw()

func loadWarsaw() *time.Location {
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatPoints formats a point amount with a space as the thousands separator
func FormatPoints(points int64) string {
	str := fmt.Sprintf("%d", points)

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(' ')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatOdds renders decimal odds with two places
func FormatOdds(odds decimal.Decimal) string {
	return odds.StringFixed(2)
}

// FormatDate renders a kickoff time in Polish local time
func FormatDate(t time.Time) string {
	return t.In(warsaw).Format("02.01.2006, 15:04")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// Plural picks the Polish noun form for n: one, few (2-4), many
func Plural(n int, one, few, many string) string {
	if n == 1 {
		return one
	}
	if n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20) {
		return few
	}
	return many
}
