// Package export: выгрузки в xlsx.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type Sheet struct {
	Title  string
	Header []string
	Rows   [][]any
}

type Workbook struct {
	File *excelize.File
}

// NewWorkbook: по листу на Sheet; жирная шапка с автофильтром и ширина колонок по содержимому.
func NewWorkbook(sheets []Sheet) (*Workbook, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", s.Title, err)
		}
		if err := fillSheet(f, s); err != nil {
			return nil, err
		}
	}
	return &Workbook{File: f}, nil
}

func fillSheet(f *excelize.File, s Sheet) error {
	if len(s.Header) == 0 {
		return nil
	}
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Title, "A1", &header); err != nil {
		return fmt.Errorf("header %q: %w", s.Title, err)
	}
	for r, row := range s.Rows {
		if err := f.SetSheetRow(s.Title, fmt.Sprintf("A%d", r+2), &row); err != nil {
			return fmt.Errorf("row %d of %q: %w", r+2, s.Title, err)
		}
	}

	end := colName(len(s.Header)) + "1"
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(s.Title, "A1", end, bold)
	}
	_ = f.AutoFilter(s.Title, "A1:"+end, nil)

	for c, h := range s.Header {
		w := float64(visualLen(h)) + 1.5
		for r := 0; r < min(50, len(s.Rows)); r++ {
			if c < len(s.Rows[r]) {
				if l := float64(visualLen(fmt.Sprint(s.Rows[r][c]))) * 1.1; l > w {
					w = l
				}
			}
		}
		w = max(12, min(w, 60))
		col := colName(c + 1)
		_ = f.SetColWidth(s.Title, col, col, w)
	}
	return nil
}

func (w *Workbook) Write(out io.Writer) error {
	_, err := w.File.WriteTo(out)
	return err
}

func (w *Workbook) Close() error { return w.File.Close() }

// colName: 1 -> A, 27 -> AA.
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}
