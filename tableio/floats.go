package tableio

import (
	"strconv"
	"strings"
)

// FloatList is a list of numbers stored in a single csv cell, space
// separated.
type FloatList []float64

func (l FloatList) MarshalCSV() (string, error) {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " "), nil
}

func (l *FloatList) UnmarshalCSV(s string) error {
	fields := strings.Fields(s)
	out := make(FloatList, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return err
		}
		out[i] = v
	}
	*l = out
	return nil
}

// ParseOptionalFloat parses s, returning nil for an empty cell.
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
