package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/export/xlsx"
)

const orderSchema = `
name: Order
defaults:
  header: default.GREY_HEADER
fields:
  - name: id
    header: Order
  - name: customer
    header: Customer
    fields:
      - name: name
        header: Name
      - name: city
        header: City
  - name: total
    header: Total
    kind: float
options:
  sheet_name: Orders
  mode: multi
  row_ceiling: 4
`

const orderData = `[
  {"id": "o-1", "customer": {"name": "Ann", "city": "Oslo"}, "total": 12.5},
  {"id": "o-2", "customer": {"name": "Bo", "city": "Rome"}, "total": 3},
  {"id": "o-3", "customer": {"name": "Cy", "city": "Lima"}, "total": 7}
]`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	schemaFile := filepath.Join(dir, "orders.yaml")
	dataFile := filepath.Join(dir, "orders.json")
	book := filepath.Join(dir, "orders.xlsx")
	metrics := filepath.Join(dir, "export.prom")
	require.NoError(t, os.WriteFile(schemaFile, []byte(orderSchema), 0o644))
	require.NoError(t, os.WriteFile(dataFile, []byte(orderData), 0o644))

	out := run(t, "render", "--schema", schemaFile, "--data", dataFile, "-o", book,
		"--sheet-name", "Sales", "--metrics-file", metrics)
	assert.Contains(t, out, "wrote 3 rows")

	// Two header rows and a ceiling of 4 leave room for two records per sheet.
	m, err := xlsx.ReadFile(book)
	require.NoError(t, err)
	require.Len(t, m.Sheets, 2)
	assert.Equal(t, "Sales1", m.Sheets[0].Name)
	assert.Equal(t, "Oslo", m.Sheets[0].Cell(2, 2).Text)
	assert.Equal(t, "Lima", m.Sheets[1].Cell(2, 2).Text)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "export_rows_rendered_total 3")

	html := filepath.Join(dir, "orders.html")
	run(t, "preview", book, "-o", html)
	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Customer")

	out = run(t, "inspect", book)
	assert.Contains(t, out, "Sales1: 4 rows")
	assert.Contains(t, out, "A1:A2")
}

func TestLoadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a: 1\n  b: {c: x}\n"), 0o644))
	rows, err := loadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0]["a"])

	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))
	_, err = loadRows(path)
	assert.Error(t, err)
}
