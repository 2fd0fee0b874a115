package domain

import "errors"

var (
	// ErrNoPosts means the feed yielded nothing to analyze. No report is produced.
	ErrNoPosts = errors.New("no posts to analyze")

	// ErrInvalidPublication means the publication identifier could not be parsed.
	ErrInvalidPublication = errors.New("invalid publication identifier")

	// ErrDocumentUnavailable means a page could not be retrieved.
	ErrDocumentUnavailable = errors.New("document unavailable")

	// ErrAnalysisInProgress means another run for the same publication holds the lock.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)
