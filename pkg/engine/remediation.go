package engine

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed remediation/*.yaml
var embeddedTemplates embed.FS

var (
	ErrTemplateNotFound = errors.New("remediation template not found")
	ErrNoRemediation    = errors.New("no remediation template matches the finding")
)

// Variables filled in from a scan result by PlanFor.
const (
	VarResourceID   = "resource_id"
	VarResourceType = "resource_type"
	VarFinding      = "finding"
)

// RemediationTemplate represents a remediation script template
type RemediationTemplate struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	Issue             string   `yaml:"issue"`
	Risk              string   `yaml:"risk"`
	Standard          string   `yaml:"standard"`
	Description       string   `yaml:"description"`
	ResourceTypes     []string `yaml:"resource_types"`
	Keywords          []string `yaml:"keywords"`
	FixCommand        string   `yaml:"fix_command"`
	ValidationCommand string   `yaml:"validation_command"`
	RollbackCommand   string   `yaml:"rollback_command"`
	Variables         []string `yaml:"variables"`
}

// Matches reports whether the template applies to a scan result.
func (t RemediationTemplate) Matches(r ScanResult) bool {
	return matchesResult(t.ResourceTypes, t.Keywords, r)
}

// RemediationEngine manages remediation templates
type RemediationEngine struct {
	Templates map[string]RemediationTemplate
}

// NewRemediationEngine creates an engine preloaded with the built-in templates.
func NewRemediationEngine() (*RemediationEngine, error) {
	e := &RemediationEngine{Templates: make(map[string]RemediationTemplate)}
	if _, err := e.loadFS(embeddedTemplates, "remediation"); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadTemplates reads YAML templates from a directory and returns the ids it
// loaded.
func (e *RemediationEngine) LoadTemplates(dir string) ([]string, error) {
	return e.loadFS(os.DirFS(dir), ".")
}

func (e *RemediationEngine) loadFS(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var loaded []string
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, entry.Name())))
		if err != nil {
			return loaded, err
		}

		var t RemediationTemplate
		if err := yaml.Unmarshal(data, &t); err != nil {
			return loaded, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if t.ID == "" {
			return loaded, fmt.Errorf("template %s has no id", entry.Name())
		}
		e.Templates[t.ID] = t
		loaded = append(loaded, t.ID)
	}
	return loaded, nil
}

// ListTemplates returns "id: name" for every template, sorted by id
func (e *RemediationEngine) ListTemplates() []string {
	list := make([]string, 0, len(e.Templates))
	for _, id := range e.ids() {
		list = append(list, fmt.Sprintf("%s: %s", id, e.Templates[id].Name))
	}
	return list
}

func (e *RemediationEngine) ids() []string {
	ids := make([]string, 0, len(e.Templates))
	for id := range e.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Match returns the first template, in id order, that applies to r.
func (e *RemediationEngine) Match(r ScanResult) (RemediationTemplate, bool) {
	for _, id := range e.ids() {
		if t := e.Templates[id]; t.Matches(r) {
			return t, true
		}
	}
	return RemediationTemplate{}, false
}

// PlanFor renders the plan of the template matching r.
func (e *RemediationEngine) PlanFor(r ScanResult) (string, error) {
	t, ok := e.Match(r)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoRemediation, r.Finding)
	}
	return e.GeneratePlan(t.ID, map[string]string{
		VarResourceID:   r.ResourceID,
		VarResourceType: r.ResourceType,
		VarFinding:      r.Finding,
	})
}

// GeneratePlan creates a remediation plan from a template and variables
func (e *RemediationEngine) GeneratePlan(id string, vars map[string]string) (string, error) {
	tmpl, ok := e.Templates[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	for _, requiredVar := range tmpl.Variables {
		if _, exists := vars[requiredVar]; !exists {
			return "", fmt.Errorf("missing required variable: %s", requiredVar)
		}
	}

	fixCmd, err := renderString("fix", tmpl.FixCommand, vars)
	if err != nil {
		return "", err
	}
	validateCmd, err := renderString("validate", tmpl.ValidationCommand, vars)
	if err != nil {
		return "", err
	}
	rollbackCmd, err := renderString("rollback", tmpl.RollbackCommand, vars)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("[FIX PLAN]\n")
	sb.WriteString(fmt.Sprintf("Issue: %s\n", tmpl.Issue))
	sb.WriteString(fmt.Sprintf("Risk: %s\n", tmpl.Risk))
	sb.WriteString(fmt.Sprintf("Standard: %s\n\n", tmpl.Standard))

	sb.WriteString("Suggested Fix:\n")
	sb.WriteString(strings.TrimSpace(fixCmd) + "\n\n")

	sb.WriteString("Validation:\n")
	sb.WriteString(strings.TrimSpace(validateCmd) + "\n\n")

	sb.WriteString("Rollback:\n")
	sb.WriteString(strings.TrimSpace(rollbackCmd) + "\n")

	return sb.String(), nil
}

func renderString(name, tmplStr string, vars map[string]string) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
