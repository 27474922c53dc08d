// Package types holds the value types shared across the crawler's packages:
// the work item placed on the frontier, the classified on-disk artifact it
// produces, and the ledger row recorded for it.
package types

import "time"

// CrawlRequest is a canonical URL awaiting fetch — the Go name for spec's
// CrawlItem. It participates in no frontier invariant itself (the frontier
// tracks the bare URL string); it carries the bookkeeping a worker wants once
// it has claimed that URL.
type CrawlRequest struct {
	URL string
	// EnqueuedAt is set by the worker at the moment it claims URL; the
	// frontier does not record when a URL was offered.
	EnqueuedAt time.Time
}

// ArtifactKind classifies a persisted artifact.
type ArtifactKind int

const (
	// ArtifactHTML is a text/html page stored under the html/ subtree.
	ArtifactHTML ArtifactKind = iota
	// ArtifactFile is any non-HTML download stored under the files/ subtree.
	ArtifactFile
)

func (k ArtifactKind) String() string {
	if k == ArtifactHTML {
		return "html"
	}
	return "file"
}

// Artifact is a file persisted to disk holding the body of a fetched URL.
type Artifact struct {
	Path        string
	URL         string
	ContentType string
	Kind        ArtifactKind
}

// MetadataRecord is a single row of the append-only metadata ledger.
type MetadataRecord struct {
	URL         string
	Path        string
	ContentType string
}
