package contract

import "context"

// Extractor turns a natural-language question plus the dataset digest into a
// structured query result.
type Extractor interface {
	Extract(ctx context.Context, question string, digest SalesDigest) (ExtractedQuery, error)
}

// Responder answers inventory availability for the extracted product names.
type Responder interface {
	AnswerInventory(ctx context.Context, products []string) (InventoryAnswer, error)
}

// Augmenter enriches an extraction with market-context commentary. Callers
// must only invoke it when the query has products and a recognized time
// period.
type Augmenter interface {
	Augment(ctx context.Context, query ExtractedQuery) (AugmentedResult, error)
}

// Catalog resolves a product name to its stock record. Absence is a normal
// outcome, not an error.
type Catalog interface {
	Lookup(name string) (InventoryRecord, bool)
}
