package store

import (
	"context"
	"strconv"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/redis/go-redis/v9"
)

// createUserScript allocates an id and stores the user only if the username is free.
// KEYS: user key, id sequence. ARGV: username, password hash, created_at ns.
var createUserScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
local id = redis.call("INCR", KEYS[2])
redis.call("HSET", KEYS[1], "id", id, "username", ARGV[1], "password_hash", ARGV[2], "created_at", ARGV[3])
return id
`)

// RedisUserStore is a Redis implementation of auth.UserRepository.
type RedisUserStore struct {
	client *redis.Client
	prefix string
	seqKey string
}

// NewRedisUserStore creates a new Redis-backed user store.
func NewRedisUserStore(client *redis.Client) *RedisUserStore {
	return &RedisUserStore{
		client: client,
		prefix: "user:",
		seqKey: "user_seq",
	}
}

func (r *RedisUserStore) Create(ctx context.Context, user *auth.User) error {
	id, err := createUserScript.Run(ctx, r.client,
		[]string{r.prefix + user.Username, r.seqKey},
		user.Username, string(user.PasswordHash), user.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return err
	}

	if id == 0 {
		return auth.ErrDuplicateUser
	}

	user.ID = id

	return nil
}

func (r *RedisUserStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+username).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, auth.ErrUserNotFound
	}

	id, _ := strconv.ParseInt(fields["id"], 10, 64)

	return &auth.User{
		ID:           id,
		Username:     fields["username"],
		PasswordHash: []byte(fields["password_hash"]),
		CreatedAt:    parseUnixNano(fields["created_at"]),
	}, nil
}

var _ auth.UserRepository = (*RedisUserStore)(nil)
