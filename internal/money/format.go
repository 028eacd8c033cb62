package money

import "strings"

const rupee = "₹"

// FormatINR renders a whole-rupee amount with Indian digit grouping, e.g. ₹1,80,000.
func FormatINR(a Amount) string {
	return formatGrouped(a, rupee)
}

// FormatINRCode is FormatINR with an ASCII "INR " prefix, for output that
// cannot carry the rupee sign such as core PDF fonts.
func FormatINRCode(a Amount) string {
	return formatGrouped(a, "INR ")
}

func formatGrouped(a Amount, symbol string) string {
	rounded := a.d.Round(0)
	neg := rounded.IsNegative()
	digits := rounded.Abs().String()

	var out string
	if len(digits) <= 3 {
		out = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		out = strings.Join(groups, ",") + "," + tail
	}
	if neg {
		return "-" + symbol + out
	}
	return symbol + out
}
