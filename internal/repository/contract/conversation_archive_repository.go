package contract

import (
	"context"
	"errors"

	"companion-bot-be/internal/entity"
	"companion-bot-be/internal/repository/specification"
)

// ErrArchiveExists is returned by Create when the session already has an archive with the same end time.
var ErrArchiveExists = errors.New("conversation already archived")

type ConversationArchiveRepository interface {
	Create(ctx context.Context, archive *entity.ConversationArchive) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationArchive, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationArchive, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
