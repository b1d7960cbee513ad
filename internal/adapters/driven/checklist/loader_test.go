package checklist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
)

const jsonChecklist = `{
  "companies": {
    "Company Incorporation": {
      "documents": [
        "Articles of Association",
        {"text": "Memorandum of Association", "ref": "s.12"},
        {"ref": "no text"},
        42,
        "  "
      ]
    },
    "Licensing": {"documents": ["Licence Application"]}
  },
  "version": "2024-01",
  "employment": {
    "Company Incorporation": {"documents": ["Employment Contract"]},
    "notes": "not a process"
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_JSONPreservesOrder(t *testing.T) {
	checklist, err := NewLoader("").Load(context.Background(), writeFile(t, "checklist.json", jsonChecklist))
	require.NoError(t, err)

	require.Len(t, checklist.Categories, 2)
	assert.Equal(t, "companies", checklist.Categories[0].Name)
	assert.Equal(t, "employment", checklist.Categories[1].Name)

	companies := checklist.Categories[0]
	require.Len(t, companies.Processes, 2)
	assert.Equal(t, "Company Incorporation", companies.Processes[0].Name)
	assert.Equal(t, []string{"Articles of Association", "Memorandum of Association", "42"}, companies.Processes[0].Documents)
	assert.Equal(t, "Licensing", companies.Processes[1].Name)

	assert.Equal(t,
		[]string{"Articles of Association", "Memorandum of Association", "42", "Employment Contract"},
		checklist.RequiredDocuments("Company Incorporation"))
}

func TestLoad_YAML(t *testing.T) {
	content := `
partnerships:
  Partnership Registration:
    documents:
      - Partnership Agreement
      - text: Register of Partners
companies:
  Company Incorporation:
    documents: [Articles of Association]
`
	checklist, err := NewLoader("").Load(context.Background(), writeFile(t, "checklist.yml", content))
	require.NoError(t, err)

	assert.Equal(t, []string{"Partnership Registration", "Company Incorporation"}, checklist.Processes())
	assert.Equal(t, []string{"Partnership Agreement", "Register of Partners"},
		checklist.RequiredDocuments("Partnership Registration"))
}

func TestLoad_DefaultPath(t *testing.T) {
	path := writeFile(t, DefaultFileName, jsonChecklist)

	checklist, err := NewLoader(path).Load(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, checklist.HasProcess("Licensing"))
}

func TestLoad_ReadsFreshEveryTime(t *testing.T) {
	path := writeFile(t, "checklist.json", `{"c": {"P": {"documents": ["A"]}}}`)
	loader := NewLoader("")

	first, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"c": {"P": {"documents": ["B"]}}}`), 0600))
	second, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, first.RequiredDocuments("P"))
	assert.Equal(t, []string{"B"}, second.RequiredDocuments("P"))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") }},
		{"empty file", func(t *testing.T) string { return writeFile(t, "c.json", "  \n") }},
		{"malformed", func(t *testing.T) string { return writeFile(t, "c.json", `{"companies": [`) }},
		{"top-level list", func(t *testing.T) string { return writeFile(t, "c.yaml", "- a\n- b\n") }},
		{"unsupported extension", func(t *testing.T) string { return writeFile(t, "c.txt", "{}") }},
		{"no path", func(t *testing.T) string { return "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader("").Load(context.Background(), tt.path(t))
			assert.ErrorIs(t, err, domain.ErrChecklistUnreadable)
		})
	}
}
