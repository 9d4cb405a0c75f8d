package inventory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	contractx "github.com/RobertvandeCamp/sales-forecasting-case/assistant/contract"
)

// Catalog is the static stock catalog, loaded once at startup and read-only
// for the lifetime of the process.
type Catalog struct {
	items []contractx.InventoryRecord
}

var _ contractx.Catalog = (*Catalog)(nil)

type stockFile struct {
	InventoryItems []contractx.InventoryRecord `json:"inventory_items"`
}

// Load reads the stock catalog JSON. Fields beyond id, name and
// quantity_in_stock are ignored.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock catalog: %w", err)
	}

	var file stockFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode stock catalog: %w", err)
	}

	log.Info().Str("path", path).Int("items", len(file.InventoryItems)).Msg("stock catalog loaded")

	return New(file.InventoryItems), nil
}

// New builds a catalog from records already in memory.
func New(items []contractx.InventoryRecord) *Catalog {
	return &Catalog{items: append([]contractx.InventoryRecord(nil), items...)}
}

// Lookup finds a record by exact, case-sensitive product name. The second
// return value is false when no record exists; that is a normal outcome.
func (c *Catalog) Lookup(name string) (contractx.InventoryRecord, bool) {
	for _, item := range c.items {
		if item.Name == name {
			return item, true
		}
	}
	return contractx.InventoryRecord{}, false
}
