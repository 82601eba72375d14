package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const takeStateTTL = 5 * time.Minute

// TakeCache is a read-through cache of TakeState snapshots. The database
// stays the source of truth; any cache failure degrades to a DB read.
type TakeCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewTakeCache(client *redis.Client) *TakeCache {
	return &TakeCache{redis: client, ttl: takeStateTTL}
}

func takeStateKey(userID uint, quizID uint) string {
	return fmt.Sprintf("take:%d:%d", userID, quizID)
}

func (c *TakeCache) Get(ctx context.Context, userID uint, quizID uint) (*TakeState, bool) {
	data, err := c.redis.Get(ctx, takeStateKey(userID, quizID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Failed to read take state from Redis: %v", err)
		}
		return nil, false
	}

	var state TakeState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		log.Printf("Failed to unmarshal cached take state: %v", err)
		return nil, false
	}
	return &state, true
}

func (c *TakeCache) Set(ctx context.Context, userID uint, quizID uint, state *TakeState) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("Failed to marshal take state: %v", err)
		return
	}
	if err := c.redis.Set(ctx, takeStateKey(userID, quizID), data, c.ttl).Err(); err != nil {
		log.Printf("Failed to store take state in Redis: %v", err)
	}
}

func (c *TakeCache) Invalidate(ctx context.Context, userID uint, quizID uint) {
	if err := c.redis.Del(ctx, takeStateKey(userID, quizID)).Err(); err != nil {
		log.Printf("Failed to invalidate take state in Redis: %v", err)
	}
}
