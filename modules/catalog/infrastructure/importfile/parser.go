// Package importfile parses bulk catalog uploads. Two formats are
// accepted: CSV and XLSX, both with the same column set. The first
// row is a header and is matched by name, so column order does not
// matter.
package importfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Row is one parsed catalog line.
type Row struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Brand       string
	Price       decimal.Decimal

	Applications    []ApplicationSpec
	CrossReferences []CrossReferenceSpec
}

// ApplicationSpec is parsed from the applications column, entries
// separated by ";" in the form "Make|Model|2010-2015|Engine". Year
// range and engine are optional.
type ApplicationSpec struct {
	Make     string
	Model    string
	YearFrom int
	YearTo   int
	Engine   string
}

// CrossReferenceSpec is parsed from the cross_references column,
// entries separated by ";" in the form "Brand:SKU".
type CrossReferenceSpec struct {
	CompetitorBrand string
	CompetitorSKU   string
}

// RowError points at the offending line. Line numbers are 1-based
// and include the header.
type RowError struct {
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var requiredColumns = []string{"sku", "name"}

var knownColumns = map[string]bool{
	"sku":              true,
	"name":             true,
	"description":      true,
	"category":         true,
	"brand":            true,
	"price":            true,
	"applications":     true,
	"cross_references": true,
}

// ParseCSV reads the whole file and returns parsed rows. The first
// row error aborts parsing.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv record")
		}
		line++
		row, err := parseRecord(cols, record, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseXLSX reads the first sheet of an XLSX workbook.
func ParseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "read xlsx rows")
	}
	if len(records) == 0 {
		return nil, errors.New("xlsx sheet is empty")
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row, err := parseRecord(cols, record, i+2)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if !knownColumns[key] {
			return nil, &RowError{Line: 1, Message: fmt.Sprintf("unknown column %q", name)}
		}
		cols[key] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, &RowError{Line: 1, Message: fmt.Sprintf("missing required column %q", required)}
		}
	}
	return cols, nil
}

func parseRecord(cols map[string]int, record []string, line int) (Row, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := Row{
		SKU:         strings.ToUpper(field("sku")),
		Name:        field("name"),
		Description: field("description"),
		Category:    field("category"),
		Brand:       field("brand"),
	}
	if row.SKU == "" {
		return Row{}, &RowError{Line: line, Message: "sku is empty"}
	}
	if row.Name == "" {
		return Row{}, &RowError{Line: line, Message: "name is empty"}
	}

	if raw := field("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return Row{}, &RowError{Line: line, Message: fmt.Sprintf("invalid price %q", raw)}
		}
		if price.IsNegative() {
			return Row{}, &RowError{Line: line, Message: "price is negative"}
		}
		row.Price = price
	}

	apps, err := parseApplications(field("applications"), line)
	if err != nil {
		return Row{}, err
	}
	row.Applications = apps

	refs, err := parseCrossReferences(field("cross_references"), line)
	if err != nil {
		return Row{}, err
	}
	row.CrossReferences = refs

	return row, nil
}

func parseApplications(raw string, line int) ([]ApplicationSpec, error) {
	if raw == "" {
		return nil, nil
	}
	var specs []ApplicationSpec
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, "|")
		if len(fields) < 2 {
			return nil, &RowError{Line: line, Message: fmt.Sprintf("invalid application %q, want Make|Model[|Years[|Engine]]", entry)}
		}
		spec := ApplicationSpec{
			Make:  strings.TrimSpace(fields[0]),
			Model: strings.TrimSpace(fields[1]),
		}
		if spec.Make == "" || spec.Model == "" {
			return nil, &RowError{Line: line, Message: fmt.Sprintf("invalid application %q, make and model are required", entry)}
		}
		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			from, to, err := parseYearRange(strings.TrimSpace(fields[2]))
			if err != nil {
				return nil, &RowError{Line: line, Message: err.Error()}
			}
			spec.YearFrom, spec.YearTo = from, to
		}
		if len(fields) > 3 {
			spec.Engine = strings.TrimSpace(fields[3])
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseYearRange(raw string) (int, int, error) {
	parts := strings.SplitN(raw, "-", 2)
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year range %q", raw)
	}
	to := from
	if len(parts) == 2 {
		to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year range %q", raw)
		}
	}
	if to < from {
		return 0, 0, fmt.Errorf("year range %q ends before it starts", raw)
	}
	return from, to, nil
}

func parseCrossReferences(raw string, line int) ([]CrossReferenceSpec, error) {
	if raw == "" {
		return nil, nil
	}
	var specs []CrossReferenceSpec
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.SplitN(entry, ":", 2)
		if len(fields) != 2 || strings.TrimSpace(fields[0]) == "" || strings.TrimSpace(fields[1]) == "" {
			return nil, &RowError{Line: line, Message: fmt.Sprintf("invalid cross reference %q, want Brand:SKU", entry)}
		}
		specs = append(specs, CrossReferenceSpec{
			CompetitorBrand: strings.TrimSpace(fields[0]),
			CompetitorSKU:   strings.ToUpper(strings.TrimSpace(fields[1])),
		})
	}
	return specs, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
