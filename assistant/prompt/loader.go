package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/inventory.txt
	inventoryRaw string

	//go:embed template/augmenter.txt
	augmenterRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	// Extractor is a system prompt with a {digest} placeholder.
	Extractor string
	// Inventory is the system prompt for the tool-calling inventory rounds.
	Inventory string
	// Augmenter is a user-message template with {product}, {time_period}
	// and {forecast} placeholders.
	Augmenter string
}

// LoadPromptSet returns the embedded prompts, trimmed. Safe to call
// concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Extractor: strings.TrimSpace(extractorRaw),
		Inventory: strings.TrimSpace(inventoryRaw),
		Augmenter: strings.TrimSpace(augmenterRaw),
	}
}
