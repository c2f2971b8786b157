package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zlnvch/notekeep/models"
)

type RedisNotesCache struct {
	client redis.UniversalClient
}

func NewRedisNotesCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisNotesCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return newRedisNotesCache(client), nil
}

func newRedisNotesCache(client redis.UniversalClient) *RedisNotesCache {
	return &RedisNotesCache{client: client}
}

// Owner id carries the hash tag so an owner's notes share a cluster slot
func buildNoteKey(ownerId string, noteId string) string {
	return "note:{" + ownerId + "}:" + noteId
}

const cacheTTL = 10 * time.Minute

func (redisCache *RedisNotesCache) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, bool, error) {
	data, err := redisCache.client.Get(ctx, buildNoteKey(ownerId, noteId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Note{}, false, nil
		}
		return models.Note{}, false, err
	}

	var note models.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return models.Note{}, false, err
	}

	// Guards against a key collision ever serving someone else's note
	if note.OwnerId != ownerId || note.Id != noteId {
		return models.Note{}, false, nil
	}

	return note, true, nil
}

func (redisCache *RedisNotesCache) SetNote(ctx context.Context, note models.Note) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return redisCache.client.Set(ctx, buildNoteKey(note.OwnerId, note.Id), data, cacheTTL).Err()
}

func (redisCache *RedisNotesCache) InvalidateNote(ctx context.Context, ownerId string, noteId string) error {
	return redisCache.client.Del(ctx, buildNoteKey(ownerId, noteId)).Err()
}

func (redisCache *RedisNotesCache) Close() error {
	return redisCache.client.Close()
}
