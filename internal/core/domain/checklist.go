package domain

// Checklist maps legal processes to the documents they require,
// grouped by category. Category and document order follow the source file.
type Checklist struct {
	Categories []ChecklistCategory
}

// ChecklistCategory groups the processes of one area (e.g. companies).
type ChecklistCategory struct {
	Name      string
	Processes []ChecklistProcess
}

// ChecklistProcess lists the required documents for one legal process.
// Documents are already normalised to display strings.
type ChecklistProcess struct {
	Name      string
	Documents []string
}

// RequiredDocuments returns the union of the document lists of every
// category that defines the given process. Duplicates keep their first position.
func (c *Checklist) RequiredDocuments(process string) []string {
	if c == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var docs []string
	for _, category := range c.Categories {
		for _, p := range category.Processes {
			if p.Name != process {
				continue
			}
			for _, d := range p.Documents {
				if _, ok := seen[d]; ok {
					continue
				}
				seen[d] = struct{}{}
				docs = append(docs, d)
			}
		}
	}
	return docs
}

// HasProcess reports whether any category defines the process.
func (c *Checklist) HasProcess(process string) bool {
	if c == nil {
		return false
	}
	for _, category := range c.Categories {
		for _, p := range category.Processes {
			if p.Name == process {
				return true
			}
		}
	}
	return false
}

// Processes returns every process name once, in order of first appearance.
func (c *Checklist) Processes() []string {
	if c == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, category := range c.Categories {
		for _, p := range category.Processes {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names
}

// MatchResult records whether one required document was found among the uploads.
type MatchResult struct {
	// Required is the checklist display name.
	Required string

	// Present is true when an uploaded file was confirmed for Required.
	Present bool

	// MatchedFile is the confirming filename, empty when absent.
	MatchedFile string

	// Exact is true when the match was resolved without a model query.
	Exact bool
}

// ChecklistResult is the outcome of reconciling required and uploaded documents.
type ChecklistResult struct {
	NumUploaded int
	NumRequired int
	Missing     []string
	Required    []string
	Matches     []MatchResult
}
