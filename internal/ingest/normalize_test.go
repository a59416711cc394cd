package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfi/internal/core"
	"propfi/internal/schema"
)

// statementCSV builds a wide-format CSV: header from the default schema,
// then one line per row where row[0] is the account cell and row[1:] the
// period cells (padded with empty cells up to 12).
func statementCSV(t *testing.T, rows ...[]string) []byte {
	t.Helper()

	var b strings.Builder
	b.WriteString(schema.AccountColumn)
	for _, label := range schema.Default().Labels() {
		b.WriteString("," + label)
	}
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, 13)
		copy(cells, row)
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	return []byte(b.String())
}

func fullRow(name, cell string) []string {
	row := []string{name}
	for i := 0; i < 12; i++ {
		row = append(row, cell)
	}
	return row
}

func TestNormalize_WideStatement(t *testing.T) {
	buf := statementCSV(t,
		fullRow("Rental Income", "100.50"),
		[]string{"Expenses"},
		fullRow("Water & Sewer", "(75.25)"),
	)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.TotalRows)
	assert.Equal(t, 1, res.Stats.DroppedSectionRows)
	assert.Equal(t, 24, res.Stats.ParsedRows)
	assert.Equal(t, 0, res.Stats.InvalidCurrencyCells)
	assert.Equal(t, []string{"Rental Income", "Water & Sewer"}, res.Stats.AccountNames)
	require.Len(t, res.Rows, 24)

	// One record per data row and period column, in schema order.
	first := res.Rows[0]
	assert.Equal(t, "Rental Income", first.AccountName)
	assert.Equal(t, "2024-08", first.Period.String())
	require.True(t, first.Amount.Valid)
	assert.Equal(t, "100.5", first.Amount.Decimal.String())

	negative := res.Rows[12]
	assert.Equal(t, "Water & Sewer", negative.AccountName)
	require.True(t, negative.Amount.Valid)
	assert.Equal(t, "-75.25", negative.Amount.Decimal.String())
	assert.Equal(t, "(75.25)", negative.AmountRaw)
}

func TestNormalize_ParsedRowsInvariant(t *testing.T) {
	buf := statementCSV(t,
		[]string{"Income"},
		fullRow("Rent", "10"),
		fullRow("Late Fees", "1"),
		[]string{"Expenses"},
		fullRow("Repairs", "2"),
		[]string{"Total Expense"},
		[]string{"Net Operating Income"},
	)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	dataRows := res.Stats.TotalRows - res.Stats.DroppedSectionRows
	assert.Equal(t, dataRows*12, res.Stats.ParsedRows)
	assert.Equal(t, 4, res.Stats.DroppedSectionRows)
}

func TestNormalize_NullAndInvalidCells(t *testing.T) {
	row := []string{"Misc Account", "100", "—", "n/a", "", "abc"}
	buf := statementCSV(t, row)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	require.Len(t, res.Rows, 12)
	assert.Equal(t, 1, res.Stats.InvalidCurrencyCells)

	assert.True(t, res.Rows[0].Amount.Valid)
	for i := 1; i < 12; i++ {
		assert.False(t, res.Rows[i].Amount.Valid, "cell %d should be null", i)
	}
	// Raw cells are preserved verbatim even when the amount is null.
	assert.Equal(t, "—", res.Rows[1].AmountRaw)
	assert.Equal(t, "abc", res.Rows[4].AmountRaw)
}

func TestNormalize_RoundTrip(t *testing.T) {
	buf := statementCSV(t,
		fullRow("Rental Income", "1250.75"),
		fullRow("Trash Service", "(30.00)"),
		fullRow("Misc", "—"),
	)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	for _, rec := range res.Rows {
		again, _ := ParseCurrency(rec.AmountRaw)
		require.Equal(t, rec.Amount.Valid, again.Valid, "raw %q", rec.AmountRaw)
		if rec.Amount.Valid {
			assert.True(t, rec.Amount.Decimal.Equal(again.Decimal), "raw %q", rec.AmountRaw)
		}
	}
}

func TestNormalize_MissingPeriodColumn(t *testing.T) {
	labels := schema.Default().Labels()
	header := schema.AccountColumn
	for _, label := range labels[1:] { // drop "Aug 2024"
		header += "," + label
	}
	buf := []byte(header + "\nRent,1,2,3,4,5,6,7,8,9,10,11\n")

	_, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.Error(t, err)
	assert.True(t, core.IsSchemaError(err))
	assert.Contains(t, err.Error(), "Aug 2024")
}

func TestNormalize_MisnamedAccountColumn(t *testing.T) {
	buf := statementCSV(t, fullRow("Rent", "1"))
	buf = []byte(strings.Replace(string(buf), schema.AccountColumn, "Account", 1))

	_, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.Error(t, err)
	assert.True(t, core.IsSchemaError(err))
}

func TestNormalize_SkipsBlankLinesAndEmptyNames(t *testing.T) {
	buf := statementCSV(t,
		fullRow("Rent", "1"),
		make([]string, 13), // fully empty line: not a data row at all
		fullRow("", "5"),   // empty account cell: dropped, counted
	)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.TotalRows)
	assert.Equal(t, 1, res.Stats.DroppedSectionRows)
	assert.Equal(t, 12, res.Stats.ParsedRows)
}

func TestNormalize_ByteOrderMark(t *testing.T) {
	buf := statementCSV(t, fullRow("Rent", "1"))
	buf = append([]byte("\uFEFF"), buf...)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent"}, res.Stats.AccountNames)
}

func TestNormalize_EmptyInput(t *testing.T) {
	_, err := NewNormalizer(schema.Default()).Normalize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, core.IsSchemaError(err))
}

func TestNormalize_DuplicateAccountFirstSeenOnce(t *testing.T) {
	buf := statementCSV(t,
		fullRow("Rent", "1"),
		fullRow("Rent", "2"),
	)

	res, err := NewNormalizer(schema.Default()).Normalize(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"Rent"}, res.Stats.AccountNames)
	assert.Equal(t, 24, res.Stats.ParsedRows)
}
