// Package driven lists what the core needs from the outside world.
//
// An analysis cannot run without an LLMService, a DocumentParser, a
// ChecklistSource and an OutputLocation. The Retriever, EmbeddingService and
// VectorIndex may be nil: issue detection then runs ungrounded. Adapters
// live under internal/adapters/driven and may import domain only from core.
package driven
