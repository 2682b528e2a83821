// Package prompts loads and renders the prompt templates that steer
// summarization output toward narratable, speaker-tagged text.
package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// Data is passed to every template on render.
type Data struct {
	Username string
}

// Manager handles loading and rendering of prompt templates.
type Manager struct {
	root *template.Template
	dir  string
}

// NewManager creates a new prompt manager loading templates from the specified directory.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{
		dir: dir,
	}
	m.root = template.New("root").Funcs(template.FuncMap{
		"pick": pickFunc,
	})

	if err := m.loadTemplates(dir); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return m, nil
}

func (m *Manager) loadTemplates(dir string) error {
	return filepath.Walk(dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".tmpl")

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if _, err = m.root.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
}

// Render executes the named template with the provided data.
func (m *Manager) Render(name string, data Data) (string, error) {
	if m.root.Lookup(name) == nil {
		return "", fmt.Errorf("unknown prompt template: %s", name)
	}

	var buf bytes.Buffer
	if err := m.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Names returns the loaded template names in sorted order.
func (m *Manager) Names() []string {
	var names []string
	for _, t := range m.root.Templates() {
		if t.Name() == "root" {
			continue
		}
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// pickFunc selects one random option from a list separated by "|||".
// Usage: {{pick "Option A|||Option B|||Option C"}}
// Re-rolls on each template render.
func pickFunc(options string) string {
	parts := strings.Split(options, "|||")
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts[rand.Intn(len(parts))]
}
