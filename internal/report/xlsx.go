package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"newsletter-analytics/internal/domain"
)

const (
	headerFill     = "366092"
	headerFontRGB  = "FFFFFF"
	maxColumnWidth = 50
	fileTimeLayout = "20060102_150405"
)

// XLSXWriter writes analyses as spreadsheet files into a directory.
// It implements domain.ReportWriter.
type XLSXWriter struct {
	dir    string
	logger *zap.Logger
}

// NewXLSXWriter creates a writer targeting dir. The directory is created on
// first write.
func NewXLSXWriter(dir string, logger *zap.Logger) *XLSXWriter {
	return &XLSXWriter{dir: dir, logger: logger}
}

// Filename returns analytics_<publication>_<timestamp>.xlsx for a.
func Filename(a *domain.Analysis) string {
	name := a.Publication.Key
	if name == "" {
		name = "publication"
	}

	return fmt.Sprintf("analytics_%s_%s.xlsx", name, a.GeneratedAt.Format(fileTimeLayout))
}

// WriteReport saves the workbook and returns its path.
func (w *XLSXWriter) WriteReport(ctx context.Context, a *domain.Analysis) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating report directory: %w", err)
		}
	}

	path := filepath.Join(w.dir, Filename(a))

	f, err := Workbook(a)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving report %s: %w", path, err)
	}

	w.logger.Info("report written",
		zap.String("publication", a.Publication.Key),
		zap.String("path", path),
	)

	return path, nil
}

// WriteTo streams the workbook to out.
func WriteTo(out io.Writer, a *domain.Analysis) error {
	f, err := Workbook(a)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// Workbook renders the assembled sheets. The caller closes the file.
func Workbook(a *domain.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: headerFontRGB},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range Assemble(a) {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err == nil {
			err = writeSheet(f, sheet, headerStyle)
		}
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("writing sheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(s.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
	}

	for col, width := range columnWidths(s) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, name, name, width); err != nil {
			return err
		}
	}

	return nil
}

// columnWidths sizes each column to its longest value plus two, capped.
func columnWidths(s Sheet) []float64 {
	widths := make([]float64, len(s.Header))
	fit := func(col int, v any) {
		if col >= len(widths) {
			return
		}
		n := utf8.RuneCountInString(fmt.Sprint(v)) + 2
		widths[col] = max(widths[col], float64(min(n, maxColumnWidth)))
	}

	for i, h := range s.Header {
		fit(i, h)
	}
	for _, row := range s.Rows {
		for i, v := range row {
			fit(i, v)
		}
	}

	return widths
}
