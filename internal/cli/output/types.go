package output

// CheckOutput is the structured result of the check command.
type CheckOutput struct {
	Files   []FileCheck  `json:"files" yaml:"files"`
	Summary CheckSummary `json:"summary" yaml:"summary"`
}

// FileCheck reports one checked file.
type FileCheck struct {
	Path     string       `json:"path" yaml:"path"`
	Hash     string       `json:"hash" yaml:"hash"`
	Blocks   []string     `json:"blocks" yaml:"blocks"`
	Errors   []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []BlockIssue `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BlockIssue is a non-fatal finding about one block.
type BlockIssue struct {
	Name    string `json:"name" yaml:"name"`
	Line    int    `json:"line" yaml:"line"`
	Message string `json:"message" yaml:"message"`
}

// CheckSummary totals a check run.
type CheckSummary struct {
	Files    int `json:"files" yaml:"files"`
	Blocks   int `json:"blocks" yaml:"blocks"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
}

// IndexOutput is the structured result of the index command.
type IndexOutput struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Files   []IndexedFile `json:"files" yaml:"files"`
	Summary IndexSummary  `json:"summary" yaml:"summary"`
}

// IndexedFile reports what happened to one file during indexing. Status is
// one of indexed, skipped, error or removed.
type IndexedFile struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
	Blocks int    `json:"blocks" yaml:"blocks"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// IndexSummary totals an index run.
type IndexSummary struct {
	Indexed int `json:"indexed" yaml:"indexed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`
	Removed int `json:"removed" yaml:"removed"`
	Blocks  int `json:"blocks" yaml:"blocks"`
}
