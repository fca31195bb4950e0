package cache

import (
	"context"
	"encoding/json"
	"time"

	"hof-narrator/internal/player"
	"hof-narrator/pkg/logging/logging"

	"go.uber.org/zap"
)

// Narrative is one generated text stored under a player fingerprint.
// Variants accumulate over time, never overwrite, so repeated requests for
// the same player can rotate between them.
type Narrative struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Narratives is the cache of generated texts, keyed per player fingerprint.
type Narratives struct {
	store Store
}

func NewNarratives(store Store) *Narratives {
	return &Narratives{store: store}
}

// List returns every narrative stored for the player. Corrupt elements are
// logged and skipped rather than failing the read.
func (c *Narratives) List(ctx context.Context, q player.Query) ([]Narrative, error) {
	key := NarrativesKey(q)

	raw, err := c.store.GetList(ctx, key)
	if err != nil {
		return nil, err
	}

	narratives := make([]Narrative, 0, len(raw))
	for _, entry := range raw {
		var n Narrative
		if err := json.Unmarshal(entry, &n); err != nil {
			logging.L(ctx).Warn("corrupt narrative entry skipped",
				zap.String("cache_key", key),
				zap.Error(err),
			)
			continue
		}
		narratives = append(narratives, n)
	}

	return narratives, nil
}

// Add appends one narrative to the player's list. The append is a single
// atomic list push on the store, so two concurrent misses both land.
func (c *Narratives) Add(ctx context.Context, q player.Query, text string) error {
	raw, err := json.Marshal(Narrative{Text: text, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	key := NarrativesKey(q)
	if err := c.store.Append(ctx, key, raw); err != nil {
		return err
	}

	logging.L(ctx).Info("narrative cached",
		zap.String("cache_key", key),
		zap.Int("bytes", len(raw)),
	)
	return nil
}
