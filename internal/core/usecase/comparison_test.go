package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

type fakeComparisonStore struct {
	existing *domain.ComparisonResult
	created  []*domain.ComparisonResult
}

func (f *fakeComparisonStore) GetByPair(_ context.Context, _, _, _ string) (*domain.ComparisonResult, error) {
	if f.existing == nil {
		return nil, fmt.Errorf("no comparison stored")
	}
	return f.existing, nil
}

func (f *fakeComparisonStore) Create(_ context.Context, result *domain.ComparisonResult, _, _ string) error {
	f.created = append(f.created, result)
	return nil
}

func TestDiffLinesMarksRemovedAndAdded(t *testing.T) {
	oldText := "Term of agreement.\nPayment due in 30 days.\nGoverning law: Delaware."
	newText := "Term of agreement.\nPayment due in 60 days.\nGoverning law: Delaware."

	changes := diffLines(oldText, newText)

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2: %+v", len(changes), changes)
	}
	var removed, added *domain.TextChange
	for i := range changes {
		switch changes[i].ChangeType {
		case domain.ChangeRemoved:
			removed = &changes[i]
		case domain.ChangeAdded:
			added = &changes[i]
		}
	}
	if removed == nil || removed.Text != "Payment due in 30 days." || removed.LineNumber != 2 {
		t.Fatalf("removed = %+v", removed)
	}
	if added == nil || added.Text != "Payment due in 60 days." || added.LineNumber != 2 {
		t.Fatalf("added = %+v", added)
	}
}

func TestDiffLinesSkipsBlankLines(t *testing.T) {
	changes := diffLines("a\n\nb", "a\nb")
	if len(changes) != 0 {
		t.Fatalf("blank-only difference should produce no changes, got %+v", changes)
	}
}

func TestDiffLinesIdenticalTexts(t *testing.T) {
	if changes := diffLines("a\nb", "a\nb"); len(changes) != 0 {
		t.Fatalf("identical texts should produce no changes, got %+v", changes)
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := similarityRatio("the same words", "the same words"); got != 1.0 {
		t.Fatalf("identical = %v, want 1.0", got)
	}
	if got := similarityRatio("alpha beta", "gamma delta"); got != 0.0 {
		t.Fatalf("disjoint = %v, want 0.0", got)
	}
	if got := similarityRatio("", ""); got != 1.0 {
		t.Fatalf("both empty = %v, want 1.0", got)
	}
	if got := similarityRatio("words", ""); got != 0.0 {
		t.Fatalf("one empty = %v, want 0.0", got)
	}
	// "a b c d" vs "a b x d": LCS is 3 of 4 words on each side.
	if got := similarityRatio("a b c d", "a b x d"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("partial = %v, want 0.75", got)
	}
}

func TestDiffClausesDetectsModification(t *testing.T) {
	clausesA := []domain.Clause{
		{ClauseType: "liability", Text: "liability is capped at fees paid in the prior twelve months", Confidence: 0.9},
		{ClauseType: "notices", Text: "notices shall be sent by certified mail", Confidence: 0.8},
	}
	clausesB := []domain.Clause{
		{ClauseType: "liability", Text: "liability is unlimited for all claims of any kind whatsoever", Confidence: 0.9},
		{ClauseType: "notices", Text: "notices shall be sent by certified mail", Confidence: 0.8},
		{ClauseType: "payment", Text: "payment due net 60", Confidence: 0.7},
	}

	changes := diffClauses(clausesA, clausesB)

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2: %+v", len(changes), changes)
	}
	// Sorted type order: liability before payment.
	if changes[0].ChangeType != domain.ChangeModified || changes[0].ClauseType != "liability" {
		t.Fatalf("first change = %+v, want modified liability", changes[0])
	}
	if changes[0].RiskImpact != "medium" {
		t.Fatalf("modified liability impact = %s, want medium", changes[0].RiskImpact)
	}
	if changes[1].ChangeType != domain.ChangeAdded || changes[1].ClauseType != "payment" {
		t.Fatalf("second change = %+v, want added payment", changes[1])
	}
	if changes[1].RiskImpact != "medium" {
		t.Fatalf("added payment impact = %s, want medium", changes[1].RiskImpact)
	}
}

func TestClauseRiskImpactDependsOnChangeType(t *testing.T) {
	cases := []struct {
		clauseType string
		changeType domain.ChangeType
		want       string
	}{
		{"liability", domain.ChangeRemoved, "high"},
		{"liability", domain.ChangeModified, "medium"},
		{"liability", domain.ChangeAdded, "medium"},
		{"warranty", domain.ChangeRemoved, "medium"},
		{"notices", domain.ChangeRemoved, "low"},
	}
	for _, tc := range cases {
		if got := clauseRiskImpact(tc.clauseType, tc.changeType); got != tc.want {
			t.Errorf("clauseRiskImpact(%s, %s) = %s, want %s", tc.clauseType, tc.changeType, got, tc.want)
		}
	}
}

func TestAssessChangeRiskClassifiesByChangeType(t *testing.T) {
	clauseChanges := []domain.ClauseChange{
		{ChangeType: domain.ChangeRemoved, ClauseType: "indemnity", RiskImpact: "high"},
		{ChangeType: domain.ChangeModified, ClauseType: "liability", RiskImpact: "medium"},
		{ChangeType: domain.ChangeAdded, ClauseType: "payment", RiskImpact: "medium"},
		{ChangeType: domain.ChangeRemoved, ClauseType: "notices", RiskImpact: "low"},
	}

	assessment := assessChangeRisk(nil, clauseChanges)

	if len(assessment.HighRiskChanges) != 2 {
		t.Fatalf("high-risk changes = %d, want 2: %+v", len(assessment.HighRiskChanges), assessment.HighRiskChanges)
	}
	if assessment.HighRiskChanges[0].Risk != "high" || assessment.HighRiskChanges[0].ClauseType != "indemnity" {
		t.Fatalf("first entry = %+v, want removed indemnity at high", assessment.HighRiskChanges[0])
	}
	if assessment.HighRiskChanges[1].Risk != "medium" || assessment.HighRiskChanges[1].ClauseType != "liability" {
		t.Fatalf("second entry = %+v, want modified liability at medium", assessment.HighRiskChanges[1])
	}
	for _, entry := range assessment.HighRiskChanges {
		if entry.Type == string(domain.ChangeAdded) {
			t.Fatalf("added clause must not be a high-risk change: %+v", entry)
		}
	}
	if assessment.ChangeSummary.ClausesAdded != 1 || assessment.ChangeSummary.ClausesRemoved != 2 || assessment.ChangeSummary.ClausesModified != 1 {
		t.Fatalf("summary = %+v", assessment.ChangeSummary)
	}
	if assessment.OverallRisk != "medium" {
		t.Fatalf("overall risk = %s, want medium", assessment.OverallRisk)
	}
	if len(assessment.Recommendations) == 0 {
		t.Fatal("expected recommendations for removed clauses")
	}
}

func TestGroupClausesByTypeKeepsHighestConfidence(t *testing.T) {
	grouped := groupClausesByType([]domain.Clause{
		{ClauseType: "liability", Text: "weak", Confidence: 0.6},
		{ClauseType: "liability", Text: "strong", Confidence: 0.95},
	})
	if grouped["liability"].Text != "strong" {
		t.Fatalf("representative = %q, want strong", grouped["liability"].Text)
	}
}

func TestSimilarityBucket(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0.9}, {9, 0.9}, {10, 0.7}, {49, 0.7}, {50, 0.5}, {99, 0.5}, {100, 0.3},
	}
	for _, tc := range cases {
		if got := similarityBucket(tc.count); got != tc.want {
			t.Fatalf("similarityBucket(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}
}

func TestCompareDocumentsRejectsSelfComparison(t *testing.T) {
	uc := NewComparisonUseCase(&fakeDocumentRepo{}, &fakeAnalysisStore{}, &fakeComparisonStore{})
	_, err := uc.CompareDocuments(context.Background(), "doc-1", "doc-1", "tenant-1", "user-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompareDocumentsReturnsStoredPairInEitherOrder(t *testing.T) {
	stored := &domain.ComparisonResult{DocumentAID: "doc-1", DocumentBID: "doc-2", Summary: "stored"}
	comparisons := &fakeComparisonStore{existing: stored}
	uc := NewComparisonUseCase(&fakeDocumentRepo{}, &fakeAnalysisStore{}, comparisons)

	got, err := uc.CompareDocuments(context.Background(), "doc-2", "doc-1", "tenant-1", "user-1")
	if err != nil {
		t.Fatalf("CompareDocuments() error = %v", err)
	}
	if got.Summary != "stored" {
		t.Fatalf("expected stored result, got %+v", got)
	}
	if len(comparisons.created) != 0 {
		t.Fatalf("stored pair should not be recomputed")
	}
}

func TestCompareDocumentsMissingTarget(t *testing.T) {
	repo := &fakeDocumentRepo{
		docs: map[string]*domain.Document{"doc-1": readyDocument("doc-1")},
	}
	uc := NewComparisonUseCase(repo, &fakeAnalysisStore{}, &fakeComparisonStore{})

	_, err := uc.CompareDocuments(context.Background(), "doc-1", "doc-2", "tenant-1", "user-1")
	if !domain.IsKind(err, domain.ErrComparisonTargetNotFound) {
		t.Fatalf("expected ErrComparisonTargetNotFound, got %v", err)
	}
}

func TestCompareDocumentsEndToEnd(t *testing.T) {
	repo := &fakeDocumentRepo{
		docs: map[string]*domain.Document{
			"doc-1": readyDocument("doc-1"),
			"doc-2": readyDocument("doc-2"),
		},
		fullText: map[string]string{
			"doc-1": "Term of agreement.\nSupplier shall indemnify Customer.\nGoverning law: Delaware.",
			"doc-2": "Term of agreement.\nGoverning law: Delaware.",
		},
	}
	analyses := &fakeAnalysisStore{
		clauses: map[string][]domain.Clause{
			"doc-1": {{ClauseType: "indemnity", Text: "Supplier shall indemnify Customer.", Confidence: 0.9, Page: 1}},
			"doc-2": {},
		},
	}
	comparisons := &fakeComparisonStore{}
	uc := NewComparisonUseCase(repo, analyses, comparisons)

	result, err := uc.CompareDocuments(context.Background(), "doc-1", "doc-2", "tenant-1", "user-1")
	if err != nil {
		t.Fatalf("CompareDocuments() error = %v", err)
	}

	if len(result.TextChanges) != 1 || result.TextChanges[0].ChangeType != domain.ChangeRemoved {
		t.Fatalf("text changes = %+v, want one removed line", result.TextChanges)
	}
	if len(result.ClauseChanges) != 1 || result.ClauseChanges[0].ChangeType != domain.ChangeRemoved {
		t.Fatalf("clause changes = %+v, want one removed clause", result.ClauseChanges)
	}
	if result.ClauseChanges[0].RiskImpact != "high" {
		t.Fatalf("indemnity removal impact = %s, want high", result.ClauseChanges[0].RiskImpact)
	}
	if result.RiskAssessment.OverallRisk != "medium" {
		t.Fatalf("overall risk = %s, want medium", result.RiskAssessment.OverallRisk)
	}
	if result.RiskAssessment.ChangeSummary.ClausesRemoved != 1 {
		t.Fatalf("summary = %+v", result.RiskAssessment.ChangeSummary)
	}
	if result.SimilarityScore != 0.9 {
		t.Fatalf("similarity = %v, want 0.9", result.SimilarityScore)
	}
	if len(comparisons.created) != 1 {
		t.Fatalf("result should be persisted once, got %d", len(comparisons.created))
	}
}

func TestCompareDocumentsRequiresReadyDocuments(t *testing.T) {
	notReady := readyDocument("doc-2")
	notReady.Status = domain.StatusProcessing
	repo := &fakeDocumentRepo{
		docs: map[string]*domain.Document{
			"doc-1": readyDocument("doc-1"),
			"doc-2": notReady,
		},
	}
	uc := NewComparisonUseCase(repo, &fakeAnalysisStore{}, &fakeComparisonStore{})

	_, err := uc.CompareDocuments(context.Background(), "doc-1", "doc-2", "tenant-1", "user-1")
	if !domain.IsKind(err, domain.ErrDocumentNotReady) {
		t.Fatalf("expected ErrDocumentNotReady, got %v", err)
	}
}
