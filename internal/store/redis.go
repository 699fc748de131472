package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/livetemplate/mailcraft"
)

const (
	redisDocPrefix = "mailcraft:doc:"
	redisIndexKey  = "mailcraft:docs"
)

// RedisStore keeps each document as a JSON string and indexes ids in a
// sorted set scored by update time.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore uses an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis connects using a redis:// URL or a bare host:port address.
func OpenRedis(ctx context.Context, dsn string) (*RedisStore, error) {
	var opts *redis.Options
	if strings.Contains(dsn, "://") {
		var err error
		if opts, err = redis.ParseURL(dsn); err != nil {
			return nil, fmt.Errorf("redis store: invalid dsn: %w", err)
		}
	} else {
		opts = &redis.Options{Addr: dsn}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis store: failed to connect: %w", err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) List(ctx context.Context) ([]*mailcraft.Document, error) {
	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list failed: %w", err)
	}
	docs := []*mailcraft.Document{}
	if len(ids) == 0 {
		return docs, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisDocPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list failed: %w", err)
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Index entry without a document; a concurrent delete.
			continue
		}
		doc, err := decodeDocument([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("redis store: document %q: %w", ids[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	data, err := s.client.Get(ctx, redisDocPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %q: %w", id, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis store: get %q: %w", id, err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("redis store: document %q: %w", id, err)
	}
	return doc, nil
}

func (s *RedisStore) Put(ctx context.Context, doc *mailcraft.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("redis store: encode %q: %w", doc.ID, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisDocPrefix+doc.ID, data, 0)
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(doc.UpdatedAt.UnixMilli()), Member: doc.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: put %q: %w", doc.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisDocPrefix+id)
		pipe.ZRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: delete %q: %w", id, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrDocumentNotFound)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeDocument(data []byte) (*mailcraft.Document, error) {
	var doc mailcraft.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Blocks == nil {
		doc.Blocks = []mailcraft.Block{}
	}
	return &doc, nil
}
