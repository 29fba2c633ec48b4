// Package output renders forecast responses for the terminal.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"tjweather/internal/fields"
	"tjweather/internal/providers/tjweather"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat accepts table, csv or json in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use json, table or csv)", s)
	}
}

// Presenter renders a successful envelope. Color only affects the table.
type Presenter struct {
	header *color.Color
	muted  *color.Color
	column *color.Color
}

func NewPresenter(useColor bool) *Presenter {
	p := &Presenter{
		header: color.New(color.FgYellow),
		muted:  color.New(color.FgHiBlack),
		column: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.header, p.muted, p.column} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Render writes env to w in format f. The envelope must carry data for the
// table and CSV formats.
func (p *Presenter) Render(w io.Writer, f Format, env *tjweather.Envelope) error {
	switch f {
	case FormatJSON:
		return JSON(w, env)
	case FormatCSV:
		if env.Data == nil {
			return fmt.Errorf("no data to render")
		}
		return CSV(w, env.Data)
	case FormatTable:
		if env.Data == nil {
			return fmt.Errorf("no data to render")
		}
		return p.Table(w, env.Data)
	default:
		return fmt.Errorf("unsupported output format %q", f)
	}
}

// Table writes a header line, the units and one row per time step.
func (p *Presenter) Table(w io.Writer, data *tjweather.ForecastData) error {
	units, err := json.MarshalIndent(data.Units, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode units: %w", err)
	}

	if _, err := fmt.Fprintln(w, p.header.Sprintf("Weather data (init time: %s)", data.TimeInit)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, p.muted.Sprintf("Units: %s", units)); err != nil {
		return err
	}

	codes := data.Units.Fields()
	head := make([]string, 0, len(codes)+1)
	for _, h := range append([]string{"time"}, codes...) {
		head = append(head, p.column.Sprint(h))
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(head)
	for _, row := range data.Data {
		table.Append(cells(row, codes, "-"))
	}
	table.Render()
	return nil
}

// CSV writes two comment lines followed by a header row and the data rows.
func CSV(w io.Writer, data *tjweather.ForecastData) error {
	units, err := json.Marshal(data.Units)
	if err != nil {
		return fmt.Errorf("failed to encode units: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# Weather data (init time: %s)\n# Units: %s\n", data.TimeInit, units); err != nil {
		return err
	}

	codes := data.Units.Fields()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time"}, codes...)); err != nil {
		return err
	}
	for _, row := range data.Data {
		if err := cw.Write(cells(row, codes, "")); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the upstream body pretty-printed.
func JSON(w io.Writer, env *tjweather.Envelope) error {
	s, err := env.Indented()
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func cells(row tjweather.Row, codes []string, missing string) []string {
	out := make([]string, 0, len(codes)+1)
	out = append(out, row.Time())
	for _, f := range codes {
		out = append(out, formatValue(row[f], missing))
	}
	return out
}

// formatValue prints numbers with two decimals. Absent, null and empty values
// become missing.
func formatValue(v any, missing string) string {
	switch val := v.(type) {
	case nil:
		return missing
	case float64:
		return fmt.Sprintf("%.2f", val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return fmt.Sprintf("%.2f", f)
	case string:
		if val == "" {
			return missing
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Fields lists the catalog codes of the given regions with whatever
// description is known for them.
func (p *Presenter) Fields(w io.Writer, catalog *fields.Catalog, regions ...fields.Region) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{
		p.column.Sprint("field"),
		p.column.Sprint("region"),
		p.column.Sprint("description"),
		p.column.Sprint("unit"),
		p.column.Sprint("max days"),
	})

	for _, r := range regions {
		described := fields.InfoFor(r)
		for _, code := range catalog.CodesIn(r) {
			i := described[code]
			table.Append([]string{code, string(r), i.Description, i.Unit, i.MaxDays})
		}
	}
	table.Render()
	return nil
}
