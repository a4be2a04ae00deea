// pkg/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "statusline:"

// Scope identifies everything besides the fields and separator that shapes a line
type Scope struct {
	// Rules is the rule tables fingerprint
	Rules     string
	Uniquify  bool
	HideEmpty bool
	Prejoin   bool
}

func (s Scope) flags() string {
	b := func(v bool) byte {
		if v {
			return '1'
		}
		return '0'
	}
	return string([]byte{'u', b(s.Uniquify), 'h', b(s.HideEmpty), 'p', b(s.Prejoin)})
}

// LineCache stores finished status lines in Redis, scoped to one version of
// the rule tables and one set of line settings
type LineCache struct {
	client redis.Cmdable
	scope  Scope
	ttl    time.Duration
	logger *zap.Logger
}

// NewLineCache creates a LineCache. A ttl of zero keeps entries forever.
func NewLineCache(client redis.Cmdable, scope Scope, ttl time.Duration, logger *zap.Logger) (*LineCache, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineCache{
		client: client,
		scope:  scope,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}, nil
}

// Key returns the Redis key for a field sequence and separator
func (c *LineCache) Key(fields []string, separator string) string {
	h := sha256.New()
	h.Write([]byte(c.scope.flags()))
	h.Write([]byte{0})
	h.Write([]byte(separator))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(fields, "\x1f")))
	return keyPrefix + c.scope.Rules + ":" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached line; a miss is not an error
func (c *LineCache) Get(ctx context.Context, fields []string, separator string) (string, bool, error) {
	line, err := c.client.Get(ctx, c.Key(fields, separator)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached line: %w", err)
	}
	return line, true, nil
}

// Set stores a finished line
func (c *LineCache) Set(ctx context.Context, fields []string, separator, line string) error {
	if err := c.client.Set(ctx, c.Key(fields, separator), line, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache line: %w", err)
	}
	c.logger.Debug("Cached status line", zap.String("line", line))
	return nil
}
