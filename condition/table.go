package condition

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the header-less condition grid. Each column is one list; row 1
// holds the participant assigned to it and row item+1 the condition code.
type Table struct {
	Columns []string
	Rows    [][]string
}

// List is one column of the table. Index identifies it; Name is what
// reports show and need not be unique.
type List struct {
	Index int
	Name  string
}

// NewTable names each column by its row-0 cell, falling back to the
// zero-based column index when that cell is blank.
func NewTable(rows [][]string) *Table {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	cols := make([]string, width)
	for c := range cols {
		cols[c] = strconv.Itoa(c)
		if len(rows) > 0 && c < len(rows[0]) {
			if h := strings.TrimSpace(rows[0][c]); h != "" {
				cols[c] = h
			}
		}
	}
	return &Table{Columns: cols, Rows: rows}
}

// List returns the list in column c.
func (t *Table) List(c int) List { return List{Index: c, Name: t.Columns[c]} }

// Cell returns the trimmed value at (column, row).
func (t *Table) Cell(c, row int) (string, bool) {
	if c < 0 || c >= len(t.Columns) || row < 0 || row >= len(t.Rows) || c >= len(t.Rows[row]) {
		return "", false
	}
	return strings.TrimSpace(t.Rows[row][c]), true
}

// LoadTable reads the first sheet of an .xlsx workbook, or a .csv file.
func LoadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	case ".csv", ".txt":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("condition table %s: unsupported extension", path)
	}
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return NewTable(rows), nil
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return NewTable(rows), nil
}
