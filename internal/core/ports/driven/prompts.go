package driven

// PromptStore serves the LLM prompt templates, which users may override by
// dropping files into the prompts directory.
type PromptStore interface {
	// Load returns the template called name. Built-in names never fail.
	Load(name string) (string, error)

	// Reload drops cached templates so edited files are read again.
	Reload()
}

// Built-in prompt names.
const (
	// PromptSafetySystem holds the advisor's instructions. No placeholders.
	PromptSafetySystem = "safety_system"

	// PromptSafetyAnswer must contain both PlaceholderRecords and
	// PlaceholderQuestion.
	PromptSafetyAnswer = "safety_answer"
)

// Placeholders substituted into PromptSafetyAnswer.
const (
	PlaceholderRecords  = "{{records}}"
	PlaceholderQuestion = "{{question}}"
)
