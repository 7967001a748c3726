package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/decred/slog"
	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session keys so the store can share a Redis
// database with other data.
const sessionKeyPrefix = "blackjack:session:"

// casScript performs the versioned write. The session lives in a hash with
// a "data" field and a "version" counter; the write only goes through when
// the stored counter still matches the caller's, and version 0 creates the
// hash. Returns the new version, or -1 on a conflict.
var casScript = redis.NewScript(`
local cur = redis.call("HGET", KEYS[1], "version")
if not cur then
	if ARGV[1] == "0" then
		redis.call("HSET", KEYS[1], "data", ARGV[2], "version", 1)
		redis.call("EXPIRE", KEYS[1], ARGV[3])
		return 1
	end
	return -1
end
if cur ~= ARGV[1] then
	return -1
end
local nv = tonumber(cur) + 1
redis.call("HSET", KEYS[1], "data", ARGV[2], "version", nv)
redis.call("EXPIRE", KEYS[1], ARGV[3])
return nv
`)

// RedisSessionStore keeps serialized sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	log    slog.Logger
}

// NewRedisSessionStore connects to the Redis instance at redisURL and
// verifies the connection with a ping so a bad address fails at startup
// instead of on the first session write.
func NewRedisSessionStore(ctx context.Context, redisURL string, ttl time.Duration, log slog.Logger) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	if log == nil {
		log = slog.Disabled
	}

	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		log:    log,
	}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Get returns the serialized session and its version, refreshing the TTL.
func (r *RedisSessionStore) Get(ctx context.Context, id string) ([]byte, uint64, error) {
	key := sessionKey(id)
	vals, err := r.client.HMGet(ctx, key, "data", "version").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read session %s: %v", id, err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, 0, ErrSessionNotFound
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected data type for session %s", id)
	}
	verStr, ok := vals[1].(string)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected version type for session %s", id)
	}
	version, err := strconv.ParseUint(verStr, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("corrupt version for session %s: %v", id, err)
	}

	// Sliding expiration: every read keeps an active session alive.
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		r.log.Warnf("Failed to refresh TTL for session %s: %v", id, err)
	}

	return []byte(data), version, nil
}

// Put stores the serialized session when version still matches.
func (r *RedisSessionStore) Put(ctx context.Context, id string, data []byte, version uint64) (uint64, error) {
	ttlSecs := int64(r.ttl / time.Second)
	res, err := casScript.Run(ctx, r.client, []string{sessionKey(id)},
		strconv.FormatUint(version, 10), string(data), ttlSecs).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to write session %s: %v", id, err)
	}
	if res < 0 {
		return 0, ErrVersionConflict
	}
	return uint64(res), nil
}

// Delete removes the session from Redis.
func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %v", id, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
