package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clauseguard/clauseguard/internal/core/domain"
	"github.com/clauseguard/clauseguard/internal/core/ports"
)

const clauseModifiedThreshold = 0.8

// Clause types whose changes most often shift liability or money between
// the parties.
var highRiskClauseTypes = map[string]bool{
	"liability":   true,
	"indemnity":   true,
	"termination": true,
	"payment":     true,
}

var mediumRiskClauseTypes = map[string]bool{
	"warranty":              true,
	"confidentiality":       true,
	"intellectual_property": true,
}

// ComparisonUseCase diffs two versions of a contract at line and clause
// granularity and stores the result once per unordered document pair.
type ComparisonUseCase struct {
	documents   ports.DocumentRepository
	analyses    ports.AnalysisStore
	comparisons ports.ComparisonStore
	now         func() time.Time
}

func NewComparisonUseCase(
	documents ports.DocumentRepository,
	analyses ports.AnalysisStore,
	comparisons ports.ComparisonStore,
) *ComparisonUseCase {
	return &ComparisonUseCase{
		documents:   documents,
		analyses:    analyses,
		comparisons: comparisons,
		now:         time.Now,
	}
}

func (uc *ComparisonUseCase) CompareDocuments(ctx context.Context, documentAID, documentBID, tenantID, userID string) (*domain.ComparisonResult, error) {
	if documentAID == documentBID {
		return nil, domain.WrapError(domain.ErrInvalidInput, "compare documents",
			fmt.Errorf("cannot compare a document to itself"))
	}

	// Prior result for the pair in either order short-circuits the run.
	if existing, err := uc.comparisons.GetByPair(ctx, documentAID, documentBID, tenantID); err == nil && existing != nil {
		return existing, nil
	}

	docA, err := uc.documents.GetByID(ctx, documentAID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", documentAID, err)
	}
	docB, err := uc.documents.GetByID(ctx, documentBID, tenantID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrComparisonTargetNotFound, "compare documents", err)
	}
	for _, doc := range []*domain.Document{docA, docB} {
		if doc.Status != domain.StatusReady {
			return nil, domain.WrapError(domain.ErrDocumentNotReady, "compare documents",
				fmt.Errorf("document %s has status %s", doc.ID, doc.Status))
		}
	}

	textA, err := uc.documents.GetFullText(ctx, documentAID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch text for %s: %w", documentAID, err)
	}
	textB, err := uc.documents.GetFullText(ctx, documentBID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch text for %s: %w", documentBID, err)
	}

	textChanges := diffLines(textA, textB)

	clausesA, err := uc.analyses.GetClauses(ctx, documentAID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch clauses for %s: %w", documentAID, err)
	}
	clausesB, err := uc.analyses.GetClauses(ctx, documentBID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch clauses for %s: %w", documentBID, err)
	}

	clauseChanges := diffClauses(clausesA, clausesB)

	result := &domain.ComparisonResult{
		DocumentAID:     documentAID,
		DocumentBID:     documentBID,
		TextChanges:     textChanges,
		ClauseChanges:   clauseChanges,
		SimilarityScore: similarityBucket(len(textChanges)),
		RiskAssessment:  assessChangeRisk(textChanges, clauseChanges),
		Summary:         comparisonSummary(docA, docB, textChanges, clauseChanges),
		CreatedAt:       uc.now().UTC(),
	}

	if err := uc.comparisons.Create(ctx, result, tenantID, userID); err != nil {
		return nil, fmt.Errorf("persist comparison: %w", err)
	}

	return result, nil
}

// diffClauses groups clauses by type and compares representative text per
// type. A type present on both sides counts as modified only when its text
// drifted past the similarity threshold.
func diffClauses(clausesA, clausesB []domain.Clause) []domain.ClauseChange {
	byTypeA := groupClausesByType(clausesA)
	byTypeB := groupClausesByType(clausesB)

	types := make(map[string]bool, len(byTypeA)+len(byTypeB))
	for t := range byTypeA {
		types[t] = true
	}
	for t := range byTypeB {
		types[t] = true
	}
	ordered := make([]string, 0, len(types))
	for t := range types {
		ordered = append(ordered, t)
	}
	sort.Strings(ordered)

	var changes []domain.ClauseChange
	for _, clauseType := range ordered {
		oldClause, inA := byTypeA[clauseType]
		newClause, inB := byTypeB[clauseType]

		switch {
		case inA && !inB:
			changes = append(changes, domain.ClauseChange{
				ChangeType: domain.ChangeRemoved,
				ClauseType: clauseType,
				OldText:    oldClause.Text,
				RiskImpact: clauseRiskImpact(clauseType, domain.ChangeRemoved),
				Page:       oldClause.Page,
			})
		case !inA && inB:
			changes = append(changes, domain.ClauseChange{
				ChangeType: domain.ChangeAdded,
				ClauseType: clauseType,
				NewText:    newClause.Text,
				RiskImpact: clauseRiskImpact(clauseType, domain.ChangeAdded),
				Page:       newClause.Page,
			})
		default:
			if similarityRatio(oldClause.Text, newClause.Text) < clauseModifiedThreshold {
				changes = append(changes, domain.ClauseChange{
					ChangeType: domain.ChangeModified,
					ClauseType: clauseType,
					OldText:    oldClause.Text,
					NewText:    newClause.Text,
					RiskImpact: clauseRiskImpact(clauseType, domain.ChangeModified),
					Page:       newClause.Page,
				})
			}
		}
	}

	return changes
}

// groupClausesByType keeps the highest-confidence clause per type as the
// representative for comparison.
func groupClausesByType(clauses []domain.Clause) map[string]domain.Clause {
	byType := make(map[string]domain.Clause, len(clauses))
	for _, c := range clauses {
		if current, ok := byType[c.ClauseType]; !ok || c.Confidence > current.Confidence {
			byType[c.ClauseType] = c
		}
	}
	return byType
}

// clauseRiskImpact rates a single clause change. Losing a high-risk clause
// is worse than rewording or adding one, so only removal rates "high".
func clauseRiskImpact(clauseType string, changeType domain.ChangeType) string {
	switch {
	case highRiskClauseTypes[clauseType]:
		if changeType == domain.ChangeRemoved {
			return "high"
		}
		return "medium"
	case mediumRiskClauseTypes[clauseType]:
		return "medium"
	default:
		return "low"
	}
}

// similarityBucket maps the volume of line changes to a coarse similarity
// score for ranking comparisons against each other.
func similarityBucket(textChangeCount int) float64 {
	switch {
	case textChangeCount < 10:
		return 0.9
	case textChangeCount < 50:
		return 0.7
	case textChangeCount < 100:
		return 0.5
	default:
		return 0.3
	}
}

func assessChangeRisk(textChanges []domain.TextChange, clauseChanges []domain.ClauseChange) domain.ChangeRiskAssessment {
	summary := domain.ChangeSummary{TextChanges: len(textChanges)}
	var highRisk []domain.HighRiskChange
	var recommendations []string

	for _, change := range clauseChanges {
		switch change.ChangeType {
		case domain.ChangeAdded:
			summary.ClausesAdded++
		case domain.ChangeRemoved:
			summary.ClausesRemoved++
			// Losing a critical clause is flagged at full severity;
			// additions never make this list.
			if highRiskClauseTypes[change.ClauseType] {
				highRisk = append(highRisk, domain.HighRiskChange{
					Type:        string(change.ChangeType),
					ClauseType:  change.ClauseType,
					Risk:        "high",
					Description: highRiskDescription(change),
				})
			}
		case domain.ChangeModified:
			summary.ClausesModified++
			if highRiskClauseTypes[change.ClauseType] {
				highRisk = append(highRisk, domain.HighRiskChange{
					Type:        string(change.ChangeType),
					ClauseType:  change.ClauseType,
					Risk:        "medium",
					Description: highRiskDescription(change),
				})
			}
		}
	}

	if summary.ClausesRemoved > 0 {
		recommendations = append(recommendations,
			"Review removed clauses carefully to ensure no critical protections were lost.")
	}
	if summary.ClausesModified > 2 {
		recommendations = append(recommendations,
			"Have legal counsel review the modified clauses for potential impact.")
	}
	if len(highRisk) > 0 {
		recommendations = append(recommendations,
			"Pay special attention to changes in liability, indemnity, and termination clauses.")
	}

	overall := "low"
	switch {
	case len(highRisk) > 3:
		overall = "high"
	case len(highRisk) > 0:
		overall = "medium"
	}

	return domain.ChangeRiskAssessment{
		OverallRisk:     overall,
		HighRiskChanges: highRisk,
		Recommendations: recommendations,
		ChangeSummary:   summary,
	}
}

func highRiskDescription(change domain.ClauseChange) string {
	if change.ChangeType == domain.ChangeRemoved {
		return fmt.Sprintf("Critical %s clause was removed", change.ClauseType)
	}
	return fmt.Sprintf("Important %s clause was modified", change.ClauseType)
}

func comparisonSummary(docA, docB *domain.Document, textChanges []domain.TextChange, clauseChanges []domain.ClauseChange) string {
	if len(textChanges) == 0 && len(clauseChanges) == 0 {
		return fmt.Sprintf("No material differences found between %q and %q.", docA.Title, docB.Title)
	}
	return fmt.Sprintf("Found %d line-level changes and %d clause-level changes between %q and %q.",
		len(textChanges), len(clauseChanges), docA.Title, docB.Title)
}
