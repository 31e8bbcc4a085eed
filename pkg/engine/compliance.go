package engine

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// DefaultStandard is the profile used when none is requested.
const DefaultStandard = "NIST-CSF-2.0"

// ControlStatus is the outcome of evaluating one control.
type ControlStatus string

const (
	ControlPass ControlStatus = "PASS"
	ControlFail ControlStatus = "FAIL"
)

// Control represents a single compliance outcome and the findings that evidence a gap in it
type Control struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Function      string   `yaml:"function" json:"function"`
	Description   string   `yaml:"description" json:"description"`
	ResourceTypes []string `yaml:"resource_types" json:"resource_types,omitempty"`
	Keywords      []string `yaml:"keywords" json:"keywords,omitempty"`
	Remediation   string   `yaml:"remediation" json:"remediation"`
}

// Matches reports whether a scan result is evidence against the control.
func (c Control) Matches(r ScanResult) bool {
	return matchesResult(c.ResourceTypes, c.Keywords, r)
}

// matchesResult is true when the result's resource type equals one of
// resourceTypes (case-insensitive) or its title contains one of keywords.
func matchesResult(resourceTypes, keywords []string, r ScanResult) bool {
	for _, rt := range resourceTypes {
		if strings.EqualFold(rt, r.ResourceType) {
			return true
		}
	}
	title := strings.ToLower(r.Finding)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Profile represents a compliance standard (e.g., NIST CSF 2.0)
type Profile struct {
	Standard    string    `yaml:"standard"`
	Description string    `yaml:"description"`
	Controls    []Control `yaml:"controls"`
}

// ControlResult is one control's status in a report.
type ControlResult struct {
	Control  Control       `json:"control"`
	Status   ControlStatus `json:"status"`
	Findings []ScanResult  `json:"findings"`
}

// ComplianceReport summarizes a profile evaluated against scan results.
type ComplianceReport struct {
	Standard string          `json:"standard"`
	Controls []ControlResult `json:"controls"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
}

// ComplianceEngine manages compliance profiles
type ComplianceEngine struct {
	Profiles map[string]Profile
}

// NewComplianceEngine creates an engine preloaded with the built-in profiles.
func NewComplianceEngine() (*ComplianceEngine, error) {
	e := &ComplianceEngine{Profiles: make(map[string]Profile)}
	if _, err := e.loadFS(embeddedProfiles, "profiles"); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadProfiles reads YAML profiles from a directory and returns the
// standards it loaded. A profile with an existing standard name replaces it.
func (e *ComplianceEngine) LoadProfiles(dir string) ([]string, error) {
	return e.loadFS(os.DirFS(dir), ".")
}

func (e *ComplianceEngine) loadFS(fsys fs.FS, dir string) ([]string, error) {
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

		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return loaded, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if p.Standard == "" {
			return loaded, fmt.Errorf("profile %s has no standard", entry.Name())
		}
		e.Profiles[p.Standard] = p
		loaded = append(loaded, p.Standard)
	}
	return loaded, nil
}

// ListStandards returns the names of loaded standards, sorted
func (e *ComplianceEngine) ListStandards() []string {
	keys := make([]string, 0, len(e.Profiles))
	for k := range e.Profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetProfile retrieves a profile by name, falling back to a
// case-insensitive match.
func (e *ComplianceEngine) GetProfile(name string) (Profile, bool) {
	if p, ok := e.Profiles[name]; ok {
		return p, true
	}
	for std, p := range e.Profiles {
		if strings.EqualFold(std, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// Evaluate marks each control FAIL when at least one result matches it.
func (p Profile) Evaluate(results []ScanResult) ComplianceReport {
	report := ComplianceReport{
		Standard: p.Standard,
		Controls: make([]ControlResult, 0, len(p.Controls)),
	}
	for _, c := range p.Controls {
		cr := ControlResult{Control: c, Status: ControlPass, Findings: []ScanResult{}}
		for _, r := range results {
			if c.Matches(r) {
				cr.Findings = append(cr.Findings, r)
			}
		}
		if len(cr.Findings) > 0 {
			cr.Status = ControlFail
			report.Failed++
		} else {
			report.Passed++
		}
		report.Controls = append(report.Controls, cr)
	}
	return report
}
