// Package checklist loads compliance checklists from JSON or YAML files.
//
// A checklist maps categories to processes to a document list:
//
//	{"companies": {"Company Incorporation": {"documents": [
//	    "Articles of Association",
//	    {"text": "Register of Members and Directors"}
//	]}}}
//
// Entries are plain strings or objects with a "text" field. Files are
// decoded through yaml.Node so category, process and document order follow
// the file.
package checklist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// DefaultFileName is the checklist looked up in the config directory when
// no path is given.
const DefaultFileName = "checklist.json"

// Ensure Loader implements the interface.
var _ driven.ChecklistSource = (*Loader)(nil)

// Loader reads checklist files. It holds no cache; every Load reads the file.
type Loader struct {
	defaultPath string
}

// NewLoader creates a loader. defaultPath is used when Load gets an empty path.
func NewLoader(defaultPath string) *Loader {
	return &Loader{defaultPath: defaultPath}
}

// Load reads and normalises the checklist at path.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Checklist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		path = l.defaultPath
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no checklist path configured", domain.ErrChecklistUnreadable)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", domain.ErrChecklistUnreadable, path, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrChecklistUnreadable, path, err)
	}

	checklist, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrChecklistUnreadable, path, err)
	}
	return checklist, nil
}

// Parse decodes checklist data. Categories and processes that are not
// mappings are skipped, as are document entries that are neither strings
// nor objects with a text field.
func Parse(data []byte) (*domain.Checklist, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("checklist is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}

	top := &root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("checklist must be a mapping of categories, got %s", kindName(top.Kind))
	}

	checklist := &domain.Checklist{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		name, body := top.Content[i], top.Content[i+1]
		if body.Kind != yaml.MappingNode {
			continue
		}

		category := domain.ChecklistCategory{Name: name.Value}
		for j := 0; j+1 < len(body.Content); j += 2 {
			process, entry := body.Content[j], body.Content[j+1]
			if entry.Kind != yaml.MappingNode {
				continue
			}
			category.Processes = append(category.Processes, domain.ChecklistProcess{
				Name:      process.Value,
				Documents: documents(entry),
			})
		}
		checklist.Categories = append(checklist.Categories, category)
	}
	return checklist, nil
}

func documents(process *yaml.Node) []string {
	list := mappingValue(process, "documents")
	if list == nil || list.Kind != yaml.SequenceNode {
		return nil
	}

	var docs []string
	for _, entry := range list.Content {
		var text string
		switch entry.Kind {
		case yaml.ScalarNode:
			text = entry.Value
		case yaml.MappingNode:
			if v := mappingValue(entry, "text"); v != nil && v.Kind == yaml.ScalarNode {
				text = v.Value
			}
		}
		if text = strings.TrimSpace(text); text != "" {
			docs = append(docs, text)
		}
	}
	return docs
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "nothing"
	}
}
