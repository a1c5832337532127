package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

type ExportData struct {
	RunMetadata
	Data Table `json:"data"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, table Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Data: table})
}

const (
	dataSheet    = "data"
	summarySheet = "summary"
)

// ExportXLSX writes the run table to a "data" sheet and the metadata and
// summary values to a "summary" sheet.
func ExportXLSX(path string, meta *RunMetadata, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return err
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(dataSheet, cell, &vals); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	lines := [][]any{
		{"id", meta.ID},
		{"kind", meta.Kind},
		{"name", meta.Name},
		{"timestamp", meta.Timestamp.Format("2006-01-02 15:04:05")},
	}
	keys := make([]string, 0, len(meta.Summary))
	for k := range meta.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, []any{k, meta.Summary[k]})
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
