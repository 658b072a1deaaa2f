package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"
	"time" // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// SummaryTTL is how long a computed summary stays cached
const SummaryTTL = 60 * time.Second

func summaryPrefix(userID uint) string {
	return "summary:user:" + strconv.FormatUint(uint64(userID), 10)
}

// SummaryKey is the cache key holding a user's summary for one generation
func SummaryKey(userID uint, version int64) string {
	return summaryPrefix(userID) + ":v" + strconv.FormatInt(version, 10)
}

// SummaryVersion reads the user's current summary generation, zero before the first invalidation.
// Read it before computing a summary and cache the result under that generation's key.
func SummaryVersion(ctx context.Context, rdb *redis.Client, userID uint) (int64, error) {
	return Count(ctx, rdb, summaryPrefix(userID)+":version")
}

// InvalidateSummary moves the user to a new summary generation. Summaries computed
// before the bump are cached under the old key, which is never read again.
func InvalidateSummary(ctx context.Context, rdb *redis.Client, userID uint) error {
	return rdb.Incr(ctx, summaryPrefix(userID)+":version").Err()
}

// Get retrieves a value from Redis and unmarshals it into dest
func Get(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// Set stores value as JSON with a TTL
func Set(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys from Redis
func Delete(ctx context.Context, rdb *redis.Client, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}

// Once records key for ttl and reports whether this call was the first to do so
func Once(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, 1, ttl).Result()
}

// Increment bumps a counter, starting its TTL window on the first hit
func Increment(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Count reads a counter, treating a missing key as zero
func Count(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	n, err := rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
