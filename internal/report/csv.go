package report

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// csvTimeLayout renders GeneratedAt in the "Generated At" row.
const csvTimeLayout = "2006-01-02 15:04:05"

// CSVEncoder renders a report as the flat table spreadsheet users download.
//
// encoding/csv is not used: it also quotes cells with leading spaces and carriage returns,
// and the exported files must quote exactly on comma, double quote and newline.
type CSVEncoder struct {
	// Location is the timezone of the "Generated At" row. Nil means UTC.
	Location *time.Location
}

func NewCSVEncoder(loc *time.Location) *CSVEncoder {
	return &CSVEncoder{Location: loc}
}

// Encode returns the CSV text for r. Rows are joined with "\n" and carry no trailing newline.
func (e *CSVEncoder) Encode(r Report) string {
	rows := e.rows(r)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeCell(cell))
		}
	}
	return b.String()
}

func (e *CSVEncoder) rows(r Report) [][]any {
	a, b := r.ModelA, r.ModelB

	rows := [][]any{
		{"Report ID", r.ID},
		{"Report Title", r.Title},
		{"Generated At", e.generatedAt(r.Draft)},
		{},
		{"Property", ModelAName, ModelBName},
		{"Selected Base Model", a.SelectedBaseModel, b.SelectedBaseModel},
		{"Framework", FrameworkDisplayName(a.SelectedFramework), FrameworkDisplayName(b.SelectedFramework)},
		{"Architecture", a.Architecture, b.Architecture},
		{"Data Size", a.DataSize, b.DataSize},
		{"Predicted Energy Consumption (Raw)", a.PredictedEnergyConsumptionRaw, b.PredictedEnergyConsumptionRaw},
		{"Parsed Energy Value", a.ParsedEnergyValue, b.ParsedEnergyValue},
		{"Energy Unit", a.EnergyUnit, b.EnergyUnit},
		{"Confidence Level", a.ConfidenceLevel, b.ConfidenceLevel},
		{},
		{"Chart Data Comparison"},
		{"Name", "Energy Value", "Unit"},
	}
	for _, cd := range r.ChartData {
		rows = append(rows, []any{cd.Name, cd.Energy, cd.Unit})
	}
	return rows
}

func (e *CSVEncoder) generatedAt(d Draft) string {
	t, err := d.GeneratedTime()
	if err != nil {
		return d.GeneratedAt
	}
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(csvTimeLayout)
}

// EscapeCell renders one CSV cell. Nil renders as "". A cell containing a comma, a double
// quote or a newline is wrapped in double quotes with inner quotes doubled.
func EscapeCell(cell any) string {
	s := cellString(cell)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case float64:
		return formatNumber(v, 64)
	case float32:
		return formatNumber(float64(v), 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}

// formatNumber renders v in shortest round-trip form. Magnitudes of 1e21 and above or
// below 1e-6 use exponent notation without padding ("1e+21", "1.5e-7"), negative zero is
// "0" and non-finite values are "NaN", "Infinity" or "-Infinity".
func formatNumber(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	if abs := math.Abs(v); abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(v, 'f', -1, bitSize)
	}

	s := strconv.FormatFloat(v, 'e', -1, bitSize)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
