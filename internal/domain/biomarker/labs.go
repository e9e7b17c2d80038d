// Package biomarker extracts lab readings, sleep and activity metrics from
// message text and merges them into one time series.
package biomarker

import (
	"regexp"
	"strconv"

	"github.com/okian/carelog/internal/domain/model"
)

type labPattern struct {
	re      *regexp.Regexp
	markers []model.Marker // one marker per capture group
}

// labPatterns is evaluated in order, each pattern independently.
var labPatterns = []labPattern{
	{regexp.MustCompile(`(?i)LDL[^\d]*(\d{2,3})`), []model.Marker{model.MarkerLDL}},
	{regexp.MustCompile(`(?i)HDL[^\d]*(\d{2,3})`), []model.Marker{model.MarkerHDL}},
	{regexp.MustCompile(`(?i)Triglycerides?[^\d]*(\d{2,3})`), []model.Marker{model.MarkerTriglycerides}},
	{regexp.MustCompile(`(?i)Total Cholesterol[^\d]*(\d{2,3})`), []model.Marker{model.MarkerTotalCholesterol}},
	{regexp.MustCompile(`(?i)ApoB[^\d]*(\d{1,3})`), []model.Marker{model.MarkerApoB}},
	{regexp.MustCompile(`(?i)hs?-?CRP[^\d]*(\d+(?:\.\d+)?)`), []model.Marker{model.MarkerHsCRP}},
	{regexp.MustCompile(`(?i)BP[^\d]*(\d{2,3})/(\d{2,3})`), []model.Marker{model.MarkerSBP, model.MarkerDBP}},
	{regexp.MustCompile(`(?i)VO[₂2]?max[^\d]*(\d+(?:\.\d+)?)`), []model.Marker{model.MarkerVO2max}},
	{regexp.MustCompile(`(?i)HRV[^\d]*(\d+(?:\.\d+)?)`), []model.Marker{model.MarkerHRV}},
}

// ParseLabs returns every lab reading quoted in text. Each pattern yields at
// most its first match; captures that fail to parse are dropped.
func ParseLabs(text string) []model.LabReading {
	var out []model.LabReading
	for _, p := range labPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		values := make([]float64, 0, len(p.markers))
		for i := range p.markers {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				break
			}
			values = append(values, v)
		}
		if len(values) != len(p.markers) {
			continue
		}
		for i, marker := range p.markers {
			out = append(out, model.LabReading{Marker: marker, Value: values[i]})
		}
	}
	return out
}

// ExtractLabs scans every message for lab values, ordered by timestamp with
// untimed readings last.
func ExtractLabs(msgs []model.Message) []model.LabReading {
	var out []model.LabReading
	for _, m := range model.SortMessages(msgs) {
		for _, r := range ParseLabs(m.Text) {
			r.Timestamp = m.Timestamp
			out = append(out, r)
		}
	}
	return out
}
