package usecase

import (
	"fmt"
	"regexp"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// validatePlaybookSchema checks every structural constraint and returns all
// violations at once, so a malformed playbook surfaces one complete error
// report before any rule evaluation runs.
func validatePlaybookSchema(playbook *domain.Playbook) []string {
	var errs []string

	if playbook.Version == "" {
		errs = append(errs, "missing required field: version")
	}
	if playbook.Name == "" {
		errs = append(errs, "missing required field: name")
	}
	if playbook.Rules == nil {
		errs = append(errs, "missing required field: rules")
		return errs
	}

	seen := make(map[string]bool, len(playbook.Rules))
	for i, rule := range playbook.Rules {
		errs = append(errs, validateRuleSchema(rule, i, seen)...)
	}
	return errs
}

func validateRuleSchema(rule domain.ComplianceRule, index int, seen map[string]bool) []string {
	prefix := fmt.Sprintf("rule %d", index)
	var errs []string

	if rule.ID == "" {
		errs = append(errs, fmt.Sprintf("%s: missing required field 'id'", prefix))
	} else if seen[rule.ID] {
		errs = append(errs, fmt.Sprintf("%s: duplicate rule id %q", prefix, rule.ID))
	} else {
		seen[rule.ID] = true
	}

	if rule.Name == "" {
		errs = append(errs, fmt.Sprintf("%s: missing required field 'name'", prefix))
	}
	if rule.ClauseType == "" {
		errs = append(errs, fmt.Sprintf("%s: missing required field 'clause_type'", prefix))
	}
	if len(rule.Patterns) == 0 {
		errs = append(errs, fmt.Sprintf("%s: missing required field 'patterns'", prefix))
	}
	for _, pattern := range rule.Patterns {
		if pattern == "" {
			errs = append(errs, fmt.Sprintf("%s: patterns must be non-empty strings", prefix))
			continue
		}
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid pattern %q: %v", prefix, pattern, err))
		}
	}
	if rule.RiskWeight < 0 || rule.RiskWeight > 1 {
		errs = append(errs, fmt.Sprintf("%s: 'risk_weight' must be between 0 and 1", prefix))
	}

	return errs
}
