// Package stopfile reads stop lists and address sheets from .xlsx or .csv
// files and writes geocoding and routing results back in the same formats.
package stopfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Table is a header row plus data rows as read from the first sheet.
// Rows shorter than the header are padded with empty cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header matching name, ignoring case
// and surrounding spaces, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func (t *Table) requireColumns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Column(n)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w %q (have %v)", ErrMissingColumn, n, t.Header)
		}
	}
	return idx, nil
}

type format int

const (
	formatXLSX format = iota
	formatCSV
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".csv":
		return formatCSV, nil
	}
	return 0, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
}

// ReadTable loads the first sheet of an .xlsx file or a whole .csv file.
func ReadTable(path string) (*Table, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", path, err)
	}

	var records [][]string
	switch f {
	case formatXLSX:
		records, err = readXLSX(path)
	case formatCSV:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read table %q: no header row", path)
	}

	t := &Table{Header: records[0], Rows: make([][]string, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(t.Header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// writeRows writes header and rows to path; the format follows the extension.
// Cells may be string, int, float64 or nil (empty).
func writeRows(path string, header []string, rows [][]any) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	if f == formatCSV {
		return writeCSV(path, header, rows)
	}
	return writeXLSX(path, header, rows)
}

func writeXLSX(path string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]any) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
