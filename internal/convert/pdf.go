package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// The maroto grid is 12 columns wide. Tables wider than that get their
// trailing columns dropped rather than failing the conversion.
const maxTableColumns = 12

// textToPDFConverter renders plain text line by line into a PDF document.
type textToPDFConverter struct{}

func NewTextToPDFConverter() Converter {
	return &textToPDFConverter{}
}

func (c *textToPDFConverter) Name() string   { return "text-to-pdf" }
func (c *textToPDFConverter) Source() string { return "txt" }
func (c *textToPDFConverter) Target() string { return "pdf" }

func (c *textToPDFConverter) Convert(input []byte) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	lines := strings.Split(strings.ReplaceAll(string(input), "\r\n", "\n"), "\n")
	for _, line := range lines {
		if line == "" {
			m.AddRow(3)
			continue
		}
		m.AddRow(5, text.NewCol(12, line, props.Text{Size: 10}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// csvToPDFConverter renders a CSV document as a PDF table, first row as the
// header.
type csvToPDFConverter struct{}

func NewCSVToPDFConverter() Converter {
	return &csvToPDFConverter{}
}

func (c *csvToPDFConverter) Name() string   { return "csv-to-pdf" }
func (c *csvToPDFConverter) Source() string { return "csv" }
func (c *csvToPDFConverter) Target() string { return "pdf" }

func (c *csvToPDFConverter) Convert(input []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(input))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv document")
	}

	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()
	m := maroto.New(cfg)

	m.AddRows(tableRow(rows[0], props.Text{Size: 10, Style: fontstyle.Bold}))
	for _, r := range rows[1:] {
		m.AddRows(tableRow(r, props.Text{Size: 9}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func tableRow(fields []string, style props.Text) core.Row {
	if len(fields) > maxTableColumns {
		fields = fields[:maxTableColumns]
	}
	width := maxTableColumns / len(fields)
	if width < 1 {
		width = 1
	}

	cols := make([]core.Col, 0, len(fields))
	for _, field := range fields {
		cols = append(cols, text.NewCol(width, field, style))
	}
	return row.New(6).Add(cols...)
}
