package model

// State is the terminal state of one processed file.
type State int

const (
	// Unmodified means the file had no match and was left untouched.
	Unmodified State = iota
	// Modified means the file was rewritten (or would be, in a dry run).
	Modified
	// Failed means the file could not be read, decoded or written.
	Failed
)

func (s State) String() string {
	switch s {
	case Modified:
		return "modified"
	case Failed:
		return "failed"
	default:
		return "unmodified"
	}
}

// FileResult is the outcome of processing a single file.
type FileResult struct {
	Path         string
	State        State
	Replacements int
	Diff         string // Unified diff, only filled in diff mode.
	Err          error
}

// Summary holds the results of a run for display.
type Summary struct {
	Root         string
	Scanned      int
	Replacements int
	Modified     []string
	Failed       []string
	Results      []FileResult
	DryRun       bool
	Message      string
}

// Add records one file result.
func (s *Summary) Add(r FileResult) {
	s.Scanned++
	s.Results = append(s.Results, r)
	switch r.State {
	case Modified:
		s.Modified = append(s.Modified, r.Path)
		s.Replacements += r.Replacements
	case Failed:
		s.Failed = append(s.Failed, r.Path)
	}
}
