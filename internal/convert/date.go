package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried in order. Go's parser accepts unpadded numeric fields, so
// one layout per separator family is enough.
var dateLayouts = []string{
	"1/2'06", // QIF classic, e.g. 12/31'24
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"1-2-2006",
	"1.2.2006",
	"20060102",
}

var dmyRe = regexp.MustCompile(`^(\d{1,2})([/\-.])(\d{1,2})[/\-.](\d{2,4})$`)

// ParseDate parses the date encodings seen in QIF files and spreadsheet
// exports: QIF classic (12/31'24), US and ISO forms with /, - or .
// separators, compact ISO (20241231), ISO datetimes (time and offset
// ignored), D/M/Y when unambiguous (first field > 12), and Excel 1900
// date-system serials ("45567" or "45567.75", fraction ignored).
func ParseDate(s string) (time.Time, error) {
	txt := strings.TrimSpace(s)
	txt = strings.NewReplacer("’", "'", "`", "'").Replace(txt)
	if txt == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if strings.Contains(txt, "T") {
		if t, err := time.Parse(time.RFC3339, txt); err == nil {
			return midnight(t), nil
		}
		if t, err := time.Parse("2006-01-02T15:04:05", strings.TrimSuffix(txt, "Z")); err == nil {
			return midnight(t), nil
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, txt); err == nil {
			return midnight(t), nil
		}
	}

	// D/M/Y vs M/D/Y: only treat as day-first when the first field cannot
	// be a month.
	if m := dmyRe.FindStringSubmatch(txt); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[3])
		if first > 12 && second <= 12 {
			sep := m[2]
			year := "2006"
			if len(m[4]) == 2 {
				year = "06"
			}
			layout := "2" + sep + "1" + sep + year
			if t, err := time.Parse(layout, txt); err == nil {
				return midnight(t), nil
			}
		}
	}

	if t, ok := fromExcelSerial(txt); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// fromExcelSerial converts an Excel "General" serial number to a date
// using the 1900 date system. Excel counts the nonexistent 1900-02-29
// (serial 60); serials at or past it are shifted down one day so 60 maps
// to 1900-02-28 and 61 to 1900-03-01.
func fromExcelSerial(txt string) (time.Time, bool) {
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil || f < 0 {
		return time.Time{}, false
	}
	days := int(f) // fractional part is time of day, ignored
	if days >= 60 {
		days--
	}
	base := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, days), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
