package digest

import (
	"strconv"
	"strings"
)

// FormatDate turns "YYYY-MM-DDTHH:MM..." into "MM/DD/YYYY h:mm AM|PM".
//
// It only slices the string: no timezone conversion and no validation. Input
// shorter than the fixed prefix is returned unchanged.
func FormatDate(ts string) string {
	if len(ts) < 16 {
		return ts
	}
	year, month, day := ts[0:4], ts[5:7], ts[8:10]
	hour, err := strconv.Atoi(ts[11:13])
	if err != nil {
		return ts
	}
	minute := ts[14:16]

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return month + "/" + day + "/" + year + " " + strconv.Itoa(h12) + ":" + minute + " " + suffix
}

// Truncate keeps at most n characters of body and trims surrounding whitespace.
func Truncate(body string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(body)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.TrimSpace(string(runes))
}

// TicketLink renders a navigable reference to a ticket.
func TicketLink(baseURL, key string) string {
	return "[" + key + "](" + strings.TrimRight(baseURL, "/") + "/browse/" + key + ")"
}
