// Package state is the durable local key-value store backing session
// persistence across process restarts.
package state

import "context"

// Repository is a small key-value persistence slot. Get returns (nil, nil)
// for a missing key; absence is a normal outcome, not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
