package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/internal/cmd/table"
)

type record struct {
	Title string `json:"title" yaml:"title"`
	Score int    `json:"score" yaml:"score"`
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("yaml"))
}

func TestWrite(t *testing.T) {
	raw := []record{{Title: "Naruto", Score: 8}}
	rows := func() table.Data {
		return table.Data{Headers: []string{"title", "score"}, Rows: [][]string{{"Naruto", "8"}}}
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, raw, rows))
	assert.JSONEq(t, `[{"title":"Naruto","score":8}]`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, raw, rows))
	assert.Contains(t, buf.String(), "title: Naruto")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatTable, raw, rows))
	assert.Contains(t, buf.String(), "TITLE")
	assert.Contains(t, buf.String(), "Naruto")
}

func TestTableEmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, table.Data{Headers: []string{"id"}, Empty: "No mappings."}))
	assert.Equal(t, "No mappings.\n", buf.String())
}
