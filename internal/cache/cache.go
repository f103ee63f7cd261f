// Package cache holds the dedupe markers used by the RSS importer to skip
// feed entries it has already staged. The database unique index stays the
// source of truth; a marker only saves the insert attempt.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bilgisen/khabar/internal/utils"
)

const DefaultPrefix = "khabar:rss:"

// ProcessedSet records keys that were handled recently.
type ProcessedSet interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) error
	Close() error
}

// ItemKey identifies a feed entry of a source.
func ItemKey(sourceID uint, guid string) string {
	return utils.HashParts(strconv.FormatUint(uint64(sourceID), 10), guid)
}

// New returns a Redis-backed set when url is set, otherwise an in-process one.
func New(url, prefix string) (ProcessedSet, error) {
	if url == "" {
		return NewMemorySet(), nil
	}
	return NewRedisSet(url, prefix)
}
