package services

import (
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// loadPrompt loads a prompt from the store, falling back to the built-in
// template if the store is missing or fails.
func loadPrompt(store driven.PromptStore, name string) string {
	fallback := driven.DefaultPrompts()[name]
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		logger.Debug("prompt %q unavailable, using built-in: %v", name, err)
		return fallback
	}
	return prompt
}
