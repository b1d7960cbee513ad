package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// Severity ranks how serious a flagged issue is.
type Severity string

// Known severities, lowest first.
const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ParseSeverity maps free-form model output onto a known severity.
// Unrecognised values are kept verbatim (trimmed) and rank below Low.
func ParseSeverity(s string) Severity {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "low":
		return SeverityLow
	case "medium", "moderate":
		return SeverityMedium
	case "high", "critical":
		return SeverityHigh
	default:
		return Severity(trimmed)
	}
}

// Rank returns the ordinal of the severity; unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether the severity is one of the known levels.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// Issue is a potential legal problem flagged in a document section.
// An issue whose section text does not appear in the document is kept in
// the report but cannot be annotated.
type Issue struct {
	Document   string   `json:"document"`
	Section    string   `json:"section"`
	Issue      string   `json:"issue"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion"`
}

// Note renders the annotation text appended to a flagged paragraph.
func (i Issue) Note() string {
	return "[ISSUE: " + i.Issue + "] [SEVERITY: " + i.Severity.String() + "] [SUGGESTION: " + i.Suggestion + "]"
}

// NoIssuesMarker is the literal recorded when a run found no issues.
const NoIssuesMarker = "No issues"

// IssuesFound is either the explicit no-issues marker or a list of issues.
// The zero value means detection has not been computed yet.
type IssuesFound struct {
	computed bool
	issues   []Issue
}

// NoIssues returns the explicit no-issues marker.
func NoIssues() IssuesFound {
	return IssuesFound{computed: true}
}

// IssuesOf returns a result holding the given issues.
// An empty list collapses to the no-issues marker.
func IssuesOf(issues []Issue) IssuesFound {
	if len(issues) == 0 {
		return NoIssues()
	}
	cp := make([]Issue, len(issues))
	copy(cp, issues)
	return IssuesFound{computed: true, issues: cp}
}

// Computed reports whether detection produced a result.
func (f IssuesFound) Computed() bool {
	return f.computed
}

// None reports whether the result is the no-issues marker.
func (f IssuesFound) None() bool {
	return f.computed && len(f.issues) == 0
}

// Issues returns the flagged issues; nil for the no-issues marker.
func (f IssuesFound) Issues() []Issue {
	return f.issues
}

// Len returns the number of issues.
func (f IssuesFound) Len() int {
	return len(f.issues)
}

// ByDocument groups the issues by owning document name.
func (f IssuesFound) ByDocument() map[string][]Issue {
	grouped := make(map[string][]Issue)
	for _, issue := range f.issues {
		grouped[issue.Document] = append(grouped[issue.Document], issue)
	}
	return grouped
}

// MarshalJSON encodes the marker as the literal string and issues as an array.
func (f IssuesFound) MarshalJSON() ([]byte, error) {
	if !f.computed {
		return []byte("null"), nil
	}
	if len(f.issues) == 0 {
		return json.Marshal(NoIssuesMarker)
	}
	return json.Marshal(f.issues)
}

// UnmarshalJSON accepts the literal marker, an array of issues, or null.
func (f *IssuesFound) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = IssuesFound{}
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var marker string
		if err := json.Unmarshal(data, &marker); err != nil {
			return err
		}
		if marker != NoIssuesMarker {
			return errors.New("issues_found: unexpected marker " + marker)
		}
		*f = NoIssues()
		return nil
	}

	var issues []Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return err
	}
	*f = IssuesOf(issues)
	return nil
}
