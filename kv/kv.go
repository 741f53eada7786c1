// Package kv is the key-value persistence port used for small serialized snapshots.
// Backends: process memory, local files, a gorm table, redis and aliyun OSS.
package kv

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("kv: key not found")

type Store interface {
	// Load returns ErrKeyNotFound when key was never saved.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
