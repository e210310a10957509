package exportsvc

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/risingacademy/backend/core/application"
)

const (
	applicationsSheet = "Applications"
	timeLayout        = "2006-01-02 15:04"
	maxColWidth       = 50
	minColWidth       = 10
)

var applicationsHeader = []string{
	"ID", "Type", "Status", "First name", "Last name", "Email", "Phone", "Age",
	"Experience", "Motivation", "Preferred languages", "Programming experience",
	"Availability", "Created at", "Updated at",
}

var (
	newFile   = excelize.NewFile                                 // mockable
	closeFile = func(f *excelize.File) error { return f.Close() } // mockable
)

// ApplicationsWorkbook is the xlsx export of the admin dashboard.
type ApplicationsWorkbook struct {
	File *excelize.File
}

// Filename returns the download name of an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("applications_%s.xlsx", t.UTC().Format("2006-01-02"))
}

func applicationRow(app application.Application) []interface{} {
	return []interface{}{
		app.ID,
		app.Type.Program(),
		string(app.Status),
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		app.Age,
		app.Experience.String,
		app.Motivation,
		strings.Join(app.PreferredLanguages, ", "),
		app.ProgrammingExperience.String,
		strings.Join(app.Availability, ", "),
		app.CreatedAt.UTC().Format(timeLayout),
		app.UpdatedAt.UTC().Format(timeLayout),
	}
}

// NewApplicationsWorkbook writes one row per Application, in the given order.
func NewApplicationsWorkbook(apps []application.Application) (_ *ApplicationsWorkbook, err error) {
	f := newFile()
	defer func() {
		if err != nil {
			_ = closeFile(f)
		}
	}()

	if err := f.SetSheetName("Sheet1", applicationsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(applicationsHeader))
	header := make([]interface{}, len(applicationsHeader))
	for i, h := range applicationsHeader {
		header[i] = h
		widths[i] = len(h)
	}
	if err := f.SetSheetRow(applicationsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("set header: %w", err)
	}

	for r, app := range apps {
		row := applicationRow(app)
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(applicationsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("set row %d: %w", r+2, err)
		}
		for c, val := range row {
			var l int
			switch v := val.(type) {
			case string:
				l = len([]rune(v))
			case int:
				l = len(strconv.Itoa(v))
			}
			if l > widths[c] {
				widths[c] = l
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(applicationsHeader))
	if err != nil {
		return nil, err
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(applicationsSheet, "A1", lastCol+"1", bold)
	}
	_ = f.AutoFilter(applicationsSheet, "A1:"+lastCol+"1", nil)

	for c, w := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		width := float64(w) * 1.1
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		_ = f.SetColWidth(applicationsSheet, col, col, width)
	}
	return &ApplicationsWorkbook{File: f}, nil
}

func (w *ApplicationsWorkbook) WriteTo(out io.Writer) (int64, error) {
	return w.File.WriteTo(out)
}

func (w *ApplicationsWorkbook) Close() error {
	return w.File.Close()
}
