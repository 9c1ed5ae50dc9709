package memory

import (
	"context"
	"time"

	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository expires idle sessions after ttl and purges them every 10 minutes.
func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save refreshes the expiration on every turn.
func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, error) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.Session).Clone(), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	r.cache.Delete(sessionId)
	return nil
}
