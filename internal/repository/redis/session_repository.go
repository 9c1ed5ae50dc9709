package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "companion:session:"

// SessionRepository stores sessions as JSON so every API instance sees the same conversation.
type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *goredis.Client, ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, keyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, error) {
	payload, err := r.client.Get(ctx, keyPrefix+sessionId).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionId, err)
	}

	var session store.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionId, err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	return r.client.Del(ctx, keyPrefix+sessionId).Err()
}
