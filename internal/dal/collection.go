package dal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

// collection is one top-level record set serialized as a JSON object under a single key.
// Mutations load the whole set, change the in-memory copy and write it back in one Set.
type collection[T any] struct {
	store kv.Store
	key   string
}

func (c collection[T]) load(ctx context.Context) (map[string]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}
	if !ok || raw == "" {
		return make(map[string]T), nil
	}

	res := make(map[string]T)
	if err = json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", c.key, err)
	}
	return res, nil
}

func (c collection[T]) save(ctx context.Context, items map[string]T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c.key, err)
	}
	if err = c.store.Set(ctx, c.key, string(raw)); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}
