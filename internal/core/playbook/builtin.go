// Package playbook ships the built-in compliance playbooks used when a
// tenant has not defined any of their own.
package playbook

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultName identifies the playbook used when no playbook is specified.
const DefaultName = "standard_contract"

type playbookFile struct {
	Version     string     `yaml:"version"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Rules       []ruleFile `yaml:"rules"`
}

type ruleFile struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	ClauseType      string   `yaml:"clause_type"`
	Required        bool     `yaml:"required"`
	RiskWeight      float64  `yaml:"risk_weight"`
	Patterns        []string `yaml:"patterns"`
	Recommendations []string `yaml:"recommendations"`
}

// Builtin loads one embedded playbook by its template name.
func Builtin(name string) (*domain.Playbook, error) {
	data, err := templateFS.ReadFile(path.Join("templates", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("builtin playbook %q: %w", name, domain.ErrPlaybookNotFound)
	}
	return parse(name, data)
}

// Default returns the standard contract playbook.
func Default() (*domain.Playbook, error) {
	return Builtin(DefaultName)
}

// All loads every embedded playbook, sorted by template name.
func All() ([]*domain.Playbook, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("list builtin playbooks: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)

	playbooks := make([]*domain.Playbook, 0, len(names))
	for _, name := range names {
		pb, err := Builtin(name)
		if err != nil {
			return nil, err
		}
		playbooks = append(playbooks, pb)
	}
	return playbooks, nil
}

func parse(name string, data []byte) (*domain.Playbook, error) {
	var file playbookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse builtin playbook %q: %w", name, err)
	}

	rules := make([]domain.ComplianceRule, 0, len(file.Rules))
	for _, r := range file.Rules {
		rules = append(rules, domain.ComplianceRule{
			ID:              r.ID,
			Name:            r.Name,
			Description:     r.Description,
			ClauseType:      r.ClauseType,
			Required:        r.Required,
			Patterns:        r.Patterns,
			RiskWeight:      r.RiskWeight,
			Recommendations: r.Recommendations,
		})
	}

	return &domain.Playbook{
		ID:          "builtin:" + name,
		Version:     file.Version,
		Name:        file.Name,
		Description: file.Description,
		Rules:       rules,
		IsDefault:   name == DefaultName,
	}, nil
}
