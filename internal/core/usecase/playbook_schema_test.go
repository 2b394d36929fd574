package usecase

import (
	"strings"
	"testing"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

func TestValidatePlaybookSchemaAcceptsWellFormedPlaybook(t *testing.T) {
	if errs := validatePlaybookSchema(indemnityPlaybook(true)); len(errs) != 0 {
		t.Fatalf("unexpected schema errors: %v", errs)
	}
}

func TestValidatePlaybookSchemaCollectsEveryViolation(t *testing.T) {
	playbook := &domain.Playbook{
		Rules: []domain.ComplianceRule{
			{ID: "dup", ClauseType: "misc", Patterns: []string{"ok"}, RiskWeight: 0.5},
			{ID: "dup", Name: "Duplicate", ClauseType: "misc", Patterns: []string{"("}, RiskWeight: 2},
			{Name: "No ID", Patterns: []string{""}},
		},
	}

	errs := validatePlaybookSchema(playbook)

	wants := []string{
		"missing required field: version",
		"missing required field: name",
		"rule 0: missing required field 'name'",
		"rule 1: duplicate rule id",
		"rule 1: invalid pattern",
		"rule 1: 'risk_weight' must be between 0 and 1",
		"rule 2: missing required field 'id'",
		"rule 2: missing required field 'clause_type'",
		"rule 2: patterns must be non-empty strings",
	}
	joined := strings.Join(errs, "\n")
	for _, want := range wants {
		if !strings.Contains(joined, want) {
			t.Fatalf("errors should include %q, got:\n%s", want, joined)
		}
	}
}

func TestValidatePlaybookSchemaMissingRulesShortCircuits(t *testing.T) {
	errs := validatePlaybookSchema(&domain.Playbook{Version: "1.0", Name: "empty"})
	if len(errs) != 1 || errs[0] != "missing required field: rules" {
		t.Fatalf("errs = %v", errs)
	}
}
