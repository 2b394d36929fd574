package playbook

import (
	"regexp"
	"testing"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

func TestBuiltinStandardContract(t *testing.T) {
	pb, err := Builtin("standard_contract")
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	if pb.ID != "builtin:standard_contract" {
		t.Fatalf("id = %q", pb.ID)
	}
	if !pb.IsDefault {
		t.Fatalf("standard contract playbook should be the default")
	}
	if len(pb.Rules) == 0 {
		t.Fatalf("expected rules")
	}

	seen := make(map[string]bool, len(pb.Rules))
	for _, rule := range pb.Rules {
		if rule.ID == "" || rule.Name == "" || rule.ClauseType == "" {
			t.Fatalf("incomplete rule: %+v", rule)
		}
		if seen[rule.ID] {
			t.Fatalf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = true
		if rule.RiskWeight < 0 || rule.RiskWeight > 1 {
			t.Fatalf("rule %s risk weight = %v", rule.ID, rule.RiskWeight)
		}
		if len(rule.Patterns) == 0 {
			t.Fatalf("rule %s has no patterns", rule.ID)
		}
		for _, pattern := range rule.Patterns {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				t.Fatalf("rule %s pattern %q: %v", rule.ID, pattern, err)
			}
		}
	}
	if !seen["indemnity_clause"] || !seen["liability_cap"] {
		t.Fatalf("standard playbook should cover indemnity and liability cap, got %v", seen)
	}
}

func TestBuiltinUnknownName(t *testing.T) {
	_, err := Builtin("does_not_exist")
	if !domain.IsKind(err, domain.ErrPlaybookNotFound) {
		t.Fatalf("expected ErrPlaybookNotFound, got %v", err)
	}
}

func TestDefaultMatchesDefaultName(t *testing.T) {
	pb, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if pb.ID != "builtin:"+DefaultName {
		t.Fatalf("default playbook = %q", pb.ID)
	}
}

func TestAllLoadsEveryTemplate(t *testing.T) {
	playbooks, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(playbooks) < 2 {
		t.Fatalf("playbooks = %d, want at least standard and employment", len(playbooks))
	}
	defaults := 0
	for _, pb := range playbooks {
		if pb.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("defaults = %d, want exactly 1", defaults)
	}
}
