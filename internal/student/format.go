package student

// Display formats follow the en-IN conventions the pages have always used.
const (
	shortDateLayout = "2/1/2006"
	longDateLayout  = "2 Jan 2006"
	stampLayout     = "2 Jan 2006, 03:04 pm"
)

// FormatDate renders an optional date, or fallback when absent.
func FormatDate(d *Date, fallback string) string {
	if d == nil || d.IsZero() {
		return fallback
	}
	return d.Time().Format(shortDateLayout)
}

// FormatDay renders a datetime as a day with a short month name.
func FormatDay(d DateTime) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(longDateLayout)
}

// FormatShortDay renders a datetime as d/m/yyyy.
func FormatShortDay(d DateTime) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(shortDateLayout)
}

// FormatStamp renders an optional timestamp, or "Never" when absent.
func FormatStamp(d *DateTime) string {
	if d == nil || d.IsZero() {
		return "Never"
	}
	return d.Format(stampLayout)
}
