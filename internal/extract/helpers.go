package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// datetimeFormats covers the timestamp layouts seen across EXIF, QuickTime
// and ID3 metadata.
var datetimeFormats = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05-07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	"2006:01:02 15:04:05.000",
	"2006-01-02T15:04:05.000Z",
	"2006:01:02 15:04:05.000000",
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime: %s", s)
}

// parseGPSCoordinate accepts decimal degrees ("30.2326"), decimal with a
// direction suffix ("30.2326 N"), or DMS ("30 deg 13' 57.47\" N").
func parseGPSCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " deg")

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	if strings.Contains(s, "deg") || strings.Contains(s, "°") {
		return parseDMSCoordinate(s)
	}

	if dir, num, ok := splitDirection(s); ok {
		if v, err := strconv.ParseFloat(num, 64); err == nil {
			if dir == "S" || dir == "W" {
				v = -v
			}
			return v, nil
		}
	}

	return 0, fmt.Errorf("unable to parse GPS coordinate: %s", s)
}

func splitDirection(s string) (dir, rest string, ok bool) {
	for _, d := range []string{" N", " S", " E", " W"} {
		if strings.HasSuffix(s, d) {
			return strings.TrimSpace(d), strings.TrimSpace(strings.TrimSuffix(s, d)), true
		}
	}
	return "", "", false
}

// parseDMSCoordinate converts degree/minute/second notation to decimal
// degrees. The direction suffix is required.
func parseDMSCoordinate(s string) (float64, error) {
	original := s

	dir, rest, ok := splitDirection(s)
	if !ok {
		return 0, fmt.Errorf("DMS coordinate missing direction (N/S/E/W): %s", original)
	}
	s = rest

	var degreeStr string
	switch {
	case strings.Contains(s, " deg "):
		parts := strings.SplitN(s, " deg ", 2)
		degreeStr, s = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	case strings.Contains(s, "°"):
		parts := strings.SplitN(s, "°", 2)
		degreeStr, s = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		return 0, fmt.Errorf("unable to parse DMS coordinate, no degree marker: %s", original)
	}

	degrees, err := strconv.ParseFloat(degreeStr, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse degrees from: %s", original)
	}

	var minutes, seconds float64
	if strings.Contains(s, "'") {
		parts := strings.SplitN(s, "'", 2)
		minutes, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, fmt.Errorf("unable to parse minutes from: %s", original)
		}
		s = strings.TrimSpace(parts[1])
	}
	if strings.Contains(s, "\"") {
		secondStr := strings.TrimSpace(strings.TrimSuffix(s, "\""))
		if secondStr != "" {
			seconds, err = strconv.ParseFloat(secondStr, 64)
			if err != nil {
				return 0, fmt.Errorf("unable to parse seconds from: %s", original)
			}
		}
	}

	result := degrees + minutes/60.0 + seconds/3600.0
	if dir == "S" || dir == "W" {
		result = -result
	}
	return result, nil
}

// parseBitrate normalizes "4.5 Mbps", "128 kbps", "320000" etc. to bits
// per second.
func parseBitrate(s string) (int, error) {
	original := s
	s = strings.ToLower(strings.TrimSpace(s))

	multiplier := 1
	switch {
	case strings.Contains(s, "mbps") || strings.Contains(s, "mb/s"):
		multiplier = 1_000_000
		s = strings.NewReplacer("mbps", "", "mb/s", "").Replace(s)
	case strings.Contains(s, "kbps") || strings.Contains(s, "kb/s"):
		multiplier = 1000
		s = strings.NewReplacer("kbps", "", "kb/s", "").Replace(s)
	default:
		s = strings.TrimSuffix(s, " bps")
		s = strings.TrimSuffix(s, " b/s")
	}

	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v) * multiplier, nil
	}
	return 0, fmt.Errorf("unable to parse bitrate: %s", original)
}

// parseSampleRate normalizes "44.1 kHz", "48000 Hz" etc. to hertz.
func parseSampleRate(s string) (int, error) {
	original := s
	s = strings.ToLower(strings.TrimSpace(s))

	multiplier := 1
	switch {
	case strings.Contains(s, "khz"):
		multiplier = 1000
		s = strings.ReplaceAll(s, "khz", "")
	case strings.Contains(s, "mhz"):
		multiplier = 1_000_000
		s = strings.ReplaceAll(s, "mhz", "")
	default:
		s = strings.TrimSuffix(s, " hz")
		s = strings.TrimSuffix(s, "hz")
	}

	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v) * multiplier, nil
	}
	return 0, fmt.Errorf("unable to parse sample rate: %s", original)
}

// parseFrameRate handles plain numbers, "30 fps", and fractional rates
// like "30000/1001".
func parseFrameRate(s string) (float64, error) {
	s = normalizeString(s)
	s = strings.TrimSuffix(s, " fps")
	s = strings.TrimSuffix(s, "fps")
	s = strings.TrimSpace(s)

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d, nil
		}
	}

	return strconv.ParseFloat(s, 64)
}

// parseYear accepts a bare year, any parseable date, or the first 4-digit
// run that looks like a year.
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)

	if year, err := strconv.Atoi(s); err == nil && isValidYear(year) {
		return year, nil
	}

	if t, err := parseDateTime(s); err == nil {
		return t.Year(), nil
	}

	for i := 0; i+4 <= len(s); i++ {
		if year, err := strconv.Atoi(s[i : i+4]); err == nil && isValidYear(year) {
			return year, nil
		}
	}

	return 0, fmt.Errorf("unable to parse year: %s", s)
}

func isValidYear(year int) bool {
	return year >= 1800 && year <= time.Now().Year()+10
}

// normalizeString trims whitespace, strips embedded NULs, and maps the
// "null"/"undefined" sentinels some writers emit to empty.
func normalizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\x00", "")
	if s == "null" || s == "undefined" {
		return ""
	}
	return s
}
