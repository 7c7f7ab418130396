// Package report renders a run's per-file outcomes as a terminal table and
// a one-line summary, for the CLI's end-of-run report.
package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"taketake/internal/pipeline"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// Table renders outcomes as a rounded-border table with one row per file:
// its basename, final status, the stage it reached (or failed at), any
// error text, and a humanized processing duration.
func Table(outcomes []pipeline.FileOutcome) string {
	headers := []string{"File", "Status", "Stage", "Error", "Duration"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		errText := o.ErrorText
		if len(errText) > 80 {
			errText = errText[:77] + "..."
		}
		rows = append(rows, []string{
			o.Filename,
			o.Status,
			string(o.Stage),
			errText,
			o.Duration.Round(time.Second).String(),
		})
	}

	return renderTable(headers, rows, aligns)
}

// Summary returns a one-line "N succeeded, M failed out of K files
// (X processed)" string, where X is the total size of every succeeded
// file's source recording, humanized via go-humanize.
func Summary(files []*pipeline.FileInfo, outcomes []pipeline.FileOutcome) string {
	var succeeded, failed int
	var totalBytes int64
	for i, o := range outcomes {
		switch o.Status {
		case "completed":
			succeeded++
			if i < len(files) && files[i] != nil {
				totalBytes += files[i].SourceSize
			}
		case "failed":
			failed++
		}
	}
	return fmt.Sprintf("%d succeeded, %d failed out of %d files (%s processed)",
		succeeded, failed, len(outcomes), humanize.Bytes(uint64(totalBytes)))
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
