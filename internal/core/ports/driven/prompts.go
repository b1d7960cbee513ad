package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptClassifyProcess names the legal process of a document set.
	// The template expects one %s placeholder for the combined document text.
	PromptClassifyProcess = "classify_process"

	// PromptMatchDocument asks whether two names denote the same document type.
	// The template expects %s (required document) and %s (uploaded filename).
	PromptMatchDocument = "match_document"

	// PromptDetectIssues asks for legal red flags in one chunk.
	// The template expects %s (JSON format), %s (context) and %s (chunk).
	PromptDetectIssues = "detect_issues"
)

// DefaultPrompts returns the built-in prompt templates keyed by name.
// They seed user-editable prompt files and serve as fallbacks.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptClassifyProcess: `You are an ADGM legal assistant.
Based on the following document contents, identify the most likely legal process
that the user is attempting under ADGM jurisdiction.

Respond with only the identified legal process.

Documents:
%s`,

		PromptMatchDocument: `You are a legal assistant.
Given the required ADGM document name and an uploaded file name, determine if they
represent the same type of document, even if the names differ.
Answer ONLY with 'YES' or 'NO'.

Required document: %s
Uploaded file name: %s`,

		PromptDetectIssues: `You are an ADGM legal compliance assistant.
You will receive:
1. A chunk of text from a user-uploaded legal document.
2. Relevant ADGM legal context retrieved from official regulations.

Task:
- Identify any legal red flags or inconsistencies in this chunk.
- If compliant, return Nothing Wrong.
- If issues exist, respond with a JSON array of objects in this format: %s

Relevant ADGM legal context:
%s

Document chunk:
%s`,
	}
}
