package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultUnknownMunicipality is returned when a filename does not follow the naming convention
const DefaultUnknownMunicipality = "unknown"

var (
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)
	yearPattern     = regexp.MustCompile(`^(19|20)\d{2}$`)
	monthDayPattern = regexp.MustCompile(`^\d{2}$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// meetingTypes are the meeting markers that can follow the municipality name
var meetingTypes = map[string]bool{
	"cm": true, // câmara municipal
	"am": true, // assembleia municipal
	"jf": true, // junta de freguesia
}

// FileInfo is what a filename says about its document
type FileInfo struct {
	Municipality string
	MeetingType  string
	Number       string
	Date         string
	Known        bool // false when Municipality is the unknown sentinel
}

// MunicipalityExtractor recovers the municipality from annotation filenames such as
// "Alandroal_cm_002_2022-01-03.json" or "CAMPO_MAIOR_2022_03.json": the municipality
// is every "_" segment before the first meeting marker or numeric segment.
type MunicipalityExtractor struct {
	unknown string
}

// NewMunicipalityExtractor creates an extractor using the given sentinel for unmatched names
func NewMunicipalityExtractor(unknown string) *MunicipalityExtractor {
	if unknown == "" {
		unknown = DefaultUnknownMunicipality
	}
	return &MunicipalityExtractor{unknown: unknown}
}

// Unknown returns the sentinel value
func (m *MunicipalityExtractor) Unknown() string {
	return m.unknown
}

// Extract decomposes a filename. It never fails; unmatched names get the sentinel.
func (m *MunicipalityExtractor) Extract(filename string) FileInfo {
	unknown := FileInfo{Municipality: m.unknown}

	stem := Stem(filename)
	if stem == "" {
		return unknown
	}
	parts := strings.Split(stem, "_")

	split := -1
	for i, part := range parts {
		if isBoundary(part) {
			split = i
			break
		}
	}
	if split < 1 {
		return unknown
	}
	for _, part := range parts[:split] {
		if part == "" {
			return unknown
		}
	}

	info := FileInfo{
		Municipality: strings.Join(parts[:split], "_"),
		Known:        true,
	}

	rest := parts[split:]
	if meetingTypes[strings.ToLower(rest[0])] {
		info.MeetingType = strings.ToLower(rest[0])
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		seg := rest[i]
		switch {
		case isoDatePattern.MatchString(seg):
			info.Date = seg
		case yearPattern.MatchString(seg) && info.Date == "":
			date := seg
			for n := 0; n < 2 && i+1 < len(rest) && monthDayPattern.MatchString(rest[i+1]); n++ {
				date += "-" + rest[i+1]
				i++
			}
			info.Date = date
		case digitsPattern.MatchString(seg) && info.Number == "":
			info.Number = seg
		}
	}

	return info
}

func isBoundary(segment string) bool {
	if segment == "" {
		return false
	}
	if meetingTypes[strings.ToLower(segment)] {
		return true
	}
	return segment[0] >= '0' && segment[0] <= '9'
}

// Stem returns the base filename without its extension
func Stem(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
