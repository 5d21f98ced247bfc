// Package render turns normalized records into text or CSV. Absent values
// are written as zero here and only here.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/models"
)

// Text writes records as labelled fields, one blank line between records.
func Text(w io.Writer, records []models.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		if rec.SiteID != "" {
			fmt.Fprintf(tw, "Site ID:\t%s\n", rec.SiteID)
		}
		fmt.Fprintf(tw, "Result:\t%s\n", rec.Field)
		for _, p := range rec.Params {
			fmt.Fprintf(tw, "%s:\t%s\n", p.Name, p.Value)
		}

		if rec.Series == nil {
			if err := writeFields(tw, "", rec.Payload); err != nil {
				return err
			}
			continue
		}
		for _, s := range rec.Series {
			label := s.Name
			if label == "" {
				label = rec.Field
			}
			if s.Unit != "" {
				label += " (" + s.Unit + ")"
			}
			fmt.Fprintf(tw, "%s:\n", label)
			for _, p := range s.Points {
				fmt.Fprintf(tw, "  %s\t%12.2f\n", endpoint.DateTime(p.Date), p.ValueOrZero())
			}
		}
	}
	return tw.Flush()
}

// writeFields prints scalars of m sorted by key, descending into objects.
func writeFields(w io.Writer, prefix string, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]interface{}:
			if err := writeFields(w, prefix+k+".", v); err != nil {
				return err
			}
		case []interface{}:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s%s:\t%s\n", prefix, k, b)
		case float64:
			fmt.Fprintf(w, "%s%s:\t%12.2f\n", prefix, k, v)
		case nil:
			fmt.Fprintf(w, "%s%s:\t%12.2f\n", prefix, k, 0.0)
		default:
			fmt.Fprintf(w, "%s%s:\t%v\n", prefix, k, v)
		}
	}
	return nil
}

// CSV writes one row per date with a date-time column, a date-only column
// and one value column per series.
func CSV(w io.Writer, rec models.Record) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "day"}
	for _, s := range rec.Series {
		name := s.Name
		if name == "" {
			name = "value"
		}
		if s.Unit != "" {
			name += " (" + s.Unit + ")"
		}
		header = append(header, name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var dates []time.Time
	seen := make(map[time.Time]bool)
	values := make([]map[time.Time]float64, len(rec.Series))
	for i, s := range rec.Series {
		values[i] = make(map[time.Time]float64, len(s.Points))
		for _, p := range s.Points {
			values[i][p.Date] = p.ValueOrZero()
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	sort.SliceStable(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		row := []string{endpoint.DateTime(d), endpoint.Date(d)}
		for i := range rec.Series {
			row = append(row, strconv.FormatFloat(values[i][d], 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// ExportFileName returns "<date> - <name> (<site>) - <UNIT>.csv". The date
// is the year for Year periods, year-month for Month and the full date
// otherwise.
func ExportFileName(siteID, name string, start time.Time, period, unit string) string {
	var date string
	switch period {
	case "Year":
		date = start.Format("2006")
	case "Month":
		date = start.Format("2006-01")
	default:
		date = start.Format(endpoint.DateLayout)
	}
	return fmt.Sprintf("%s - %s (%s) - %s.csv", date, unsafeFileChars.Replace(name), siteID, unit)
}
