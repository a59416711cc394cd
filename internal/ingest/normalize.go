// Package ingest turns wide month-column statement buffers into long-format
// normalized records, one per (account, period) cell.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"propfi/internal/core"
	"propfi/internal/schema"
)

// sectionRowPattern matches section headings that carry no amounts of their
// own ("Income", "Expenses", "Totals" and friends).
var sectionRowPattern = regexp.MustCompile(`^(income( & expense)?|expenses?|totals?)$`)

// summaryRowLabels are rollup rows that would double-count amounts if
// ingested as accounts. Compared lowercased against the trimmed account cell.
var summaryRowLabels = map[string]struct{}{
	"total income":         {},
	"total expense":        {},
	"total expenses":       {},
	"total revenue":        {},
	"total costs":          {},
	"gross income":         {},
	"operating income":     {},
	"operating expense":    {},
	"net operating income": {},
	"net income":           {},
	"profit":               {},
	"loss":                 {},
}

// Result is the output of one normalization pass.
type Result struct {
	Rows  []core.NormalizedRecord
	Stats core.NormalizeStats
}

// Normalizer pivots wide-format CSV buffers into long-format records
// against a declared period schema. It has no storage side effects.
type Normalizer struct {
	schema schema.Schema
}

// NewNormalizer creates a Normalizer for the given period schema.
func NewNormalizer(s schema.Schema) *Normalizer {
	return &Normalizer{schema: s}
}

// Normalize parses the raw CSV buffer and emits one NormalizedRecord per
// data row and period column. Header validation is fail-fast: a misnamed
// account column or any missing period column is a SchemaError and no rows
// are processed. Section and summary rows are dropped and counted; cells
// that fail currency parsing become null amounts with the raw cell kept,
// counted as invalid rather than fatal.
func (n *Normalizer) Normalize(ctx context.Context, buf []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(buf))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, core.NewSchemaError(schema.AccountColumn, "empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns, err := n.validateHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	seen := make(map[string]struct{})

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read data row: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}
		res.Stats.TotalRows++

		name := strings.TrimSpace(row[0])
		if isSectionRow(name) {
			res.Stats.DroppedSectionRows++
			continue
		}

		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			res.Stats.AccountNames = append(res.Stats.AccountNames, name)
		}

		for _, col := range columns {
			raw := ""
			if col.index < len(row) {
				raw = row[col.index]
			}
			amount, perr := ParseCurrency(raw)
			if perr != nil {
				res.Stats.InvalidCurrencyCells++
			}
			res.Rows = append(res.Rows, core.NormalizedRecord{
				AccountName: name,
				Period:      col.period,
				Amount:      amount,
				AmountRaw:   raw,
			})
			res.Stats.ParsedRows++
		}
	}

	slog.InfoContext(ctx, "Normalized statement buffer",
		"schema_version", n.schema.Version,
		"total_rows", res.Stats.TotalRows,
		"dropped_section_rows", res.Stats.DroppedSectionRows,
		"parsed_rows", res.Stats.ParsedRows,
		"invalid_currency_cells", res.Stats.InvalidCurrencyCells,
		"accounts", len(res.Stats.AccountNames))

	return res, nil
}

// boundColumn is a schema period column resolved to its header position.
type boundColumn struct {
	index  int
	period core.Period
}

// validateHeader checks the account column literal and the presence of every
// schema period column, returning their positions in schema order.
func (n *Normalizer) validateHeader(header []string) ([]boundColumn, error) {
	if _, _, err := schema.Detect(header); err != nil {
		return nil, err
	}
	if strings.TrimSpace(header[0]) != schema.AccountColumn {
		return nil, core.NewSchemaError(header[0], fmt.Sprintf("first column must be named %q", schema.AccountColumn))
	}

	position := make(map[string]int, len(header))
	for i, h := range header {
		position[strings.ToLower(strings.TrimSpace(h))] = i
	}

	columns := make([]boundColumn, 0, len(n.schema.Columns))
	for _, col := range n.schema.Columns {
		idx, ok := position[strings.ToLower(col.Label)]
		if !ok {
			return nil, core.NewSchemaError(col.Label, "missing required period column")
		}
		columns = append(columns, boundColumn{index: idx, period: col.Period})
	}
	return columns, nil
}

// isSectionRow reports whether a trimmed account cell is a section heading,
// a summary rollup, or empty. Such rows emit no records.
func isSectionRow(name string) bool {
	lower := strings.ToLower(name)
	if lower == "" {
		return true
	}
	if sectionRowPattern.MatchString(lower) {
		return true
	}
	_, ok := summaryRowLabels[lower]
	return ok
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
