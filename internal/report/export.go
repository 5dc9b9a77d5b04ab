package report

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"

	filenamePrefix = "aura_model_comparison_report_"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Export is an encoded report ready to hand to whatever saves files for the user.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Exporter struct {
	csv *CSVEncoder
}

func NewExporter(csv *CSVEncoder) *Exporter {
	if csv == nil {
		csv = NewCSVEncoder(nil)
	}
	return &Exporter{csv: csv}
}

func (x *Exporter) Export(r Report, format Format) (*Export, error) {
	switch format {
	case FormatCSV:
		return &Export{
			Filename:    Filename(r.Draft, FormatCSV),
			ContentType: "text/csv;charset=utf-8",
			Body:        []byte(x.csv.Encode(r)),
		}, nil
	case FormatJSON:
		body, err := ToJSON(r.Draft, r.ID)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    Filename(r.Draft, FormatJSON),
			ContentType: "application/json",
			Body:        []byte(body),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Filename is aura_model_comparison_report_<YYYY-MM-DD>.<ext>, dated by the UTC day of
// GeneratedAt.
func Filename(d Draft, format Format) string {
	date := d.GeneratedAt
	if t, err := d.GeneratedTime(); err == nil {
		date = t.UTC().Format("2006-01-02")
	} else if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	return filenamePrefix + date + "." + string(format)
}

// NewExport encodes r with a UTC CSV encoder.
func NewExport(r Report, format Format) (*Export, error) {
	return NewExporter(nil).Export(r, format)
}
