package prompts

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers for all AI prompts in gitsmart.
const (
	// GroupChanges asks the classifier to partition a change set.
	GroupChanges PromptID = "analyze/group_changes"

	// CommitMessage drafts a conventional commit message for one unit.
	CommitMessage PromptID = "message/commit_message"

	// SimpleMessage drafts a free-form commit message for one unit.
	SimpleMessage PromptID = "message/simple_message"
)

// FileChange represents a changed file in a prompt.
type FileChange struct {
	Path      string
	Status    string
	OldPath   string
	Additions int
	Deletions int
	Binary    bool
}

// GroupChangesData contains input data for the grouping prompt.
type GroupChangesData struct {
	// Files are all changed files in the working tree.
	Files []FileChange
	// Threshold is the size above which a single group is considered degenerate.
	Threshold int
}

// CommitMessageData contains input data for both message prompts.
type CommitMessageData struct {
	// Files are the files in the commit unit.
	Files []FileChange
	// Scope is the suggested conventional scope.
	Scope string
	// Rationale explains why the files were grouped (optional).
	Rationale string
	// DiffSummary is a truncated diff of the unit (optional).
	DiffSummary string
	// Types lists the allowed conventional commit types.
	Types []string
	// MaxHeaderLength is the maximum header length.
	MaxHeaderLength int
	// BodyLineWidth is the body wrap column.
	BodyLineWidth int
}
