// Package idgen issues the unique ids printed on item labels.
package idgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// sequenceTTL keeps a day's counter alive across the midnight boundary of
// every supported timezone
const sequenceTTL = 48 * time.Hour

// ItemLookup is the part of the item repository the generator needs
type ItemLookup interface {
	ExistsByUniqueID(ctx context.Context, uniqueID string) (bool, error)
}

// Config holds generator settings
type Config struct {
	Prefix      string
	MaxAttempts int
	Location    *time.Location
}

// Generator implements inventory.IdentifierGenerator on a per-day sequence
type Generator struct {
	store  cache.SequenceStore
	items  ItemLookup
	cfg    Config
	logger *zap.Logger
}

// NewGenerator creates a Generator
func NewGenerator(store cache.SequenceStore, items ItemLookup, cfg Config, logger *zap.Logger) *Generator {
	cfg.Prefix = strings.ToUpper(strings.TrimSpace(cfg.Prefix))
	if cfg.Prefix == "" {
		cfg.Prefix = "WH"
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{store: store, items: items, cfg: cfg, logger: logger}
}

// Generate draws sequence values until one yields an id no item carries
func (g *Generator) Generate(ctx context.Context, input inventory.GenerateInput) (inventory.Codes, error) {
	day := input.At.In(g.cfg.Location)
	key := g.cfg.Prefix + ":" + day.Format("060102")

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		seq, err := g.store.Next(ctx, key, sequenceTTL)
		if err != nil {
			return inventory.Codes{}, shared.WrapStorage("next item sequence", err)
		}

		uid := inventory.FormatUniqueID(g.cfg.Prefix, day, seq)
		taken, err := g.items.ExistsByUniqueID(ctx, uid)
		if err != nil {
			return inventory.Codes{}, err
		}
		if taken {
			g.logger.Warn("Item id already in use, drawing next sequence",
				zap.String("unique_id", uid),
				zap.Int("attempt", attempt),
			)
			continue
		}

		payload, err := inventory.EncodeQRPayload(uid, input.PartNo, input.PONumber)
		if err != nil {
			return inventory.Codes{}, fmt.Errorf("encode qr payload: %w", err)
		}
		return inventory.Codes{UniqueID: uid, QRPayload: payload, Barcode: uid}, nil
	}

	return inventory.Codes{}, shared.NewDomainError(shared.CodeGenerationExhausted,
		fmt.Sprintf("Could not generate a free item id after %d attempts", g.cfg.MaxAttempts))
}

var _ inventory.IdentifierGenerator = (*Generator)(nil)
