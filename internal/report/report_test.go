package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name string
	Note string
}

var columns = []Column[row]{
	{Title: "Name", Value: func(r row) string { return Fallback(r.Name, "Unknown Name") }},
	{Title: "Note", Value: func(r row) string { return Fallback(r.Note, "No description available") }},
}

func TestBuild_EmptyRecordsHasHeaderOnly(t *testing.T) {
	table := Build("Item Report", []row{}, columns)

	assert.Equal(t, "Item Report", table.Title)
	assert.Equal(t, []string{"Name", "Note"}, table.Header)
	assert.Empty(t, table.Rows)
}

func TestBuild_KeepsLoadOrderAndAppliesFallbacks(t *testing.T) {
	table := Build("Item Report", []row{{Name: "b"}, {Name: "", Note: "n"}, {Name: "a", Note: "  "}}, columns)

	assert.Equal(t, [][]string{
		{"b", "No description available"},
		{"Unknown Name", "n"},
		{"a", "No description available"},
	}, table.Rows)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "item-report_2024-03-01.pdf", Filename("item", now))

	assert.Regexp(t, regexp.MustCompile(`^order-report_\d{4}-\d{2}-\d{2}\.pdf$`), Filename("order", time.Now()))
}

func TestWritePDF_ProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build("Item Report", []row{}, columns).WritePDF(&buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF_PaginatesLongTables(t *testing.T) {
	records := make([]row, 120)
	for i := range records {
		records[i] = row{Name: fmt.Sprintf("record %d", i), Note: strings.Repeat("long text ", 20)}
	}

	var buf bytes.Buffer
	require.NoError(t, Build("Item Report", records, columns).WritePDF(&buf))

	pages := bytes.Count(buf.Bytes(), []byte("/Type /Page\n"))
	assert.Greater(t, pages, 1)
}

func TestWritePDF_NonLatinTextStillRenders(t *testing.T) {
	records := []row{{Name: "Café crème", Note: "説明"}, {Name: "Кошка", Note: "naïve"}}

	var buf bytes.Buffer
	require.NoError(t, Build("Отчёт 報告", records, columns).WritePDF(&buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
}
