package usecase

import (
	"strings"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

// diffLines computes a line-level difference between two texts using a
// longest-common-subsequence walk. Line numbers are 1-based within the
// side the change belongs to, removed lines number against the old text
// and added lines against the new text.
func diffLines(oldText, newText string) []domain.TextChange {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	// DP table of LCS lengths, (len+1) x (len+1).
	m, n := len(oldLines), len(newLines)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var changes []domain.TextChange
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case oldLines[i] == newLines[j]:
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			changes = appendLineChange(changes, domain.ChangeRemoved, oldLines[i], i+1)
			i++
		default:
			changes = appendLineChange(changes, domain.ChangeAdded, newLines[j], j+1)
			j++
		}
	}
	for ; i < m; i++ {
		changes = appendLineChange(changes, domain.ChangeRemoved, oldLines[i], i+1)
	}
	for ; j < n; j++ {
		changes = appendLineChange(changes, domain.ChangeAdded, newLines[j], j+1)
	}

	return changes
}

func appendLineChange(changes []domain.TextChange, kind domain.ChangeType, line string, lineNumber int) []domain.TextChange {
	if strings.TrimSpace(line) == "" {
		return changes
	}
	return append(changes, domain.TextChange{
		ChangeType: kind,
		Text:       line,
		LineNumber: lineNumber,
	})
}

// similarityRatio measures word-level similarity between two texts as
// 2*LCS / (lenA + lenB), ranging from 0 (disjoint) to 1 (identical).
func similarityRatio(a, b string) float64 {
	wa := strings.Fields(strings.ToLower(a))
	wb := strings.Fields(strings.ToLower(b))
	if len(wa) == 0 && len(wb) == 0 {
		return 1.0
	}
	if len(wa) == 0 || len(wb) == 0 {
		return 0.0
	}

	prev := make([]int, len(wb)+1)
	curr := make([]int, len(wb)+1)
	for i := 1; i <= len(wa); i++ {
		for j := 1; j <= len(wb); j++ {
			if wa[i-1] == wb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	matched := prev[len(wb)]
	return 2.0 * float64(matched) / float64(len(wa)+len(wb))
}
