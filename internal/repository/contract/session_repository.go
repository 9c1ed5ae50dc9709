package contract

import (
	"context"

	"companion-bot-be/pkg/store"
)

// SessionRepository keeps live conversations. Get returns (nil, nil) when the session does not exist or expired.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionId string) (*store.Session, error)
	Delete(ctx context.Context, sessionId string) error
}
