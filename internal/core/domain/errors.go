package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound         = errors.New("document not found")
	ErrDocumentNotReady         = errors.New("document not ready")
	ErrPlaybookNotFound         = errors.New("playbook not found")
	ErrInvalidPlaybook          = errors.New("invalid playbook schema")
	ErrEmbeddingProvider        = errors.New("embedding provider failure")
	ErrAnswerGeneration         = errors.New("answer generation failure")
	ErrComparisonTargetNotFound = errors.New("comparison target not found")
	ErrRateLimited              = errors.New("rate limit exceeded")
	ErrInvalidInput             = errors.New("invalid input")
	ErrTemporary                = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
