package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrDirectoryUnavailable indicates the directory backend is unreachable.
var ErrDirectoryUnavailable = errors.New("directory backend unavailable")

const (
	fieldID             = "id"
	fieldEmail          = "email"
	fieldUsername       = "username"
	fieldPasswordHash   = "password_hash"
	fieldFailedAttempts = "failed_attempts"
	fieldLockedUntil    = "locked_until"
	fieldCreatedAt      = "created_at"
	fieldUpdatedAt      = "updated_at"
)

// createScript claims the identifier index keys and writes the record hash
// in one atomic step. KEYS[1] is the record hash, KEYS[2..] the index keys.
// Returns 0 without writing anything when any index key is already taken.
const createScript = `
for i = 2, #KEYS do
  if redis.call("EXISTS", KEYS[i]) == 1 then
    return 0
  end
end
for i = 2, #KEYS do
  redis.call("SET", KEYS[i], ARGV[1])
end
redis.call("HSET", KEYS[1], unpack(ARGV, 2))
return 1
`

var createLua = redis.NewScript(createScript)

// Redis is a Directory backed by a Redis instance or cluster. Each record
// lives in a hash keyed by id; normalized identifiers are index keys mapping
// to the id. Failure counters use HINCRBY, so concurrent increments against
// one record never under-count.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "dir"
	}
	return &Redis{redis: client, prefix: prefix, now: time.Now}
}

func (r *Redis) userKey(id string) string {
	return r.prefix + ":user:" + id
}

func (r *Redis) emailKey(email string) string {
	return r.prefix + ":email:" + email
}

func (r *Redis) usernameKey(username string) string {
	return r.prefix + ":username:" + username
}

// Create implements [Directory].
func (r *Redis) Create(ctx context.Context, in CreateInput) (*UserRecord, error) {
	email := normalize(in.Email)
	username := normalize(in.Username)
	if email == "" && username == "" {
		return nil, ErrIdentityRequired
	}

	id := uuid.NewString()
	now := r.now()

	keys := []string{r.userKey(id)}
	if email != "" {
		keys = append(keys, r.emailKey(email))
	}
	if username != "" {
		keys = append(keys, r.usernameKey(username))
	}

	args := []interface{}{
		id,
		fieldID, id,
		fieldEmail, email,
		fieldUsername, username,
		fieldPasswordHash, in.PasswordHash,
		fieldFailedAttempts, 0,
		fieldLockedUntil, 0,
		fieldCreatedAt, now.UnixMilli(),
		fieldUpdatedAt, now.UnixMilli(),
	}

	created, err := createLua.Run(ctx, r.redis, keys, args...).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if created == 0 {
		return nil, ErrDuplicateIdentity
	}

	return &UserRecord{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// FindByIdentifier implements [Directory].
func (r *Redis) FindByIdentifier(ctx context.Context, identifier string) (*UserRecord, error) {
	key := normalize(identifier)
	if key == "" {
		return nil, nil
	}

	id, err := r.redis.Get(ctx, r.emailKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		id, err = r.redis.Get(ctx, r.usernameKey(key)).Result()
	}
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements [Directory].
func (r *Redis) GetByID(ctx context.Context, id string) (*UserRecord, error) {
	fields, err := r.redis.HGetAll(ctx, r.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return recordFromFields(fields)
}

// IncrementFailed implements [Directory].
func (r *Redis) IncrementFailed(ctx context.Context, id string) (int, error) {
	exists, err := r.redis.Exists(ctx, r.userKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if exists == 0 {
		return 0, nil
	}

	pipe := r.redis.TxPipeline()
	incr := pipe.HIncrBy(ctx, r.userKey(id), fieldFailedAttempts, 1)
	pipe.HSet(ctx, r.userKey(id), fieldUpdatedAt, r.now().UnixMilli())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	return int(incr.Val()), nil
}

// ResetFailed implements [Directory].
func (r *Redis) ResetFailed(ctx context.Context, id string) error {
	return r.setFields(ctx, id, fieldFailedAttempts, 0, fieldLockedUntil, 0)
}

// Lock implements [Directory].
func (r *Redis) Lock(ctx context.Context, id string, d time.Duration) error {
	return r.setFields(ctx, id, fieldLockedUntil, r.now().Add(d).UnixMilli())
}

// SetPasswordHash implements [Directory].
func (r *Redis) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.setFields(ctx, id, fieldPasswordHash, passwordHash)
}

func (r *Redis) setFields(ctx context.Context, id string, pairs ...interface{}) error {
	exists, err := r.redis.Exists(ctx, r.userKey(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if exists == 0 {
		return nil
	}

	pairs = append(pairs, fieldUpdatedAt, r.now().UnixMilli())
	if err := r.redis.HSet(ctx, r.userKey(id), pairs...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return nil
}

func recordFromFields(fields map[string]string) (*UserRecord, error) {
	failed, err := strconv.Atoi(fields[fieldFailedAttempts])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt failed_attempts", ErrDirectoryUnavailable)
	}

	rec := &UserRecord{
		ID:             fields[fieldID],
		Email:          fields[fieldEmail],
		Username:       fields[fieldUsername],
		PasswordHash:   fields[fieldPasswordHash],
		FailedAttempts: failed,
	}

	if ms, err := strconv.ParseInt(fields[fieldLockedUntil], 10, 64); err == nil && ms > 0 {
		rec.LockedUntil = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		rec.CreatedAt = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64); err == nil {
		rec.UpdatedAt = time.UnixMilli(ms)
	}

	return rec, nil
}
