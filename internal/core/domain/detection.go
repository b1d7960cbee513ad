package domain

// ChunkState is the lifecycle state of one chunk during issue detection.
type ChunkState string

// Chunk states. The last three are terminal.
const (
	ChunkPending            ChunkState = "PENDING"
	ChunkRetrieved          ChunkState = "RETRIEVED"
	ChunkClassified         ChunkState = "CLASSIFIED"
	ChunkNoIssueTerminal    ChunkState = "NO_ISSUE_TERMINAL"
	ChunkIssuesRecorded     ChunkState = "ISSUES_RECORDED"
	ChunkParseFailedSkipped ChunkState = "PARSE_FAILED_SKIPPED"
)

// IsTerminal reports whether no further transition can follow.
func (s ChunkState) IsTerminal() bool {
	switch s {
	case ChunkNoIssueTerminal, ChunkIssuesRecorded, ChunkParseFailedSkipped:
		return true
	default:
		return false
	}
}

// ChunkOutcome records how one chunk finished.
type ChunkOutcome struct {
	Document string
	Position int
	State    ChunkState
	Issues   int
	Err      error
}

// DetectionResult is the outcome of scanning a document set for issues.
type DetectionResult struct {
	// IssuesFound is the no-issues marker or the accumulated issues.
	IssuesFound IssuesFound

	// ChunksScanned counts chunks that reached a terminal state.
	ChunksScanned int

	// ChunksSkipped counts chunks whose response could not be used.
	ChunksSkipped int

	// Halted is true when a no-issue sentinel ended the whole scan.
	Halted bool

	// Outcomes lists the terminal outcome of each scanned chunk in document order.
	Outcomes []ChunkOutcome
}

// NoIssuePolicy decides what a no-issue sentinel on one chunk means for the run.
type NoIssuePolicy string

// Available no-issue policies.
const (
	// NoIssueHaltRun stops scheduling chunk work and discards every issue
	// collected so far; the run reports no issues at all.
	NoIssueHaltRun NoIssuePolicy = "halt_run"

	// NoIssuePerChunk treats the sentinel as "this chunk is clean" only.
	NoIssuePerChunk NoIssuePolicy = "per_chunk"
)

// IsValid returns true if the policy is recognised.
func (p NoIssuePolicy) IsValid() bool {
	return p == NoIssueHaltRun || p == NoIssuePerChunk
}

// String returns the string representation.
func (p NoIssuePolicy) String() string {
	return string(p)
}

// MissingDocsPolicy decides how the report computes missing documents.
type MissingDocsPolicy string

// Available missing-document policies.
const (
	// MissingDocsSemantic uses the checklist matcher's result for every report shape.
	MissingDocsSemantic MissingDocsPolicy = "semantic"

	// MissingDocsExact recomputes missing documents by exact filename containment
	// whenever issues were found.
	MissingDocsExact MissingDocsPolicy = "exact"
)

// IsValid returns true if the policy is recognised.
func (p MissingDocsPolicy) IsValid() bool {
	return p == MissingDocsSemantic || p == MissingDocsExact
}

// String returns the string representation.
func (p MissingDocsPolicy) String() string {
	return string(p)
}
