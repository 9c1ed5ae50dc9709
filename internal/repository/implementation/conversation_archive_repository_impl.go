package implementation

import (
	"context"
	"errors"

	"companion-bot-be/internal/entity"
	"companion-bot-be/internal/mapper"
	"companion-bot-be/internal/model"
	"companion-bot-be/internal/repository/contract"
	"companion-bot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ConversationArchiveRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationArchiveMapper
}

func NewConversationArchiveRepository(db *gorm.DB) contract.ConversationArchiveRepository {
	return &ConversationArchiveRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationArchiveMapper(),
	}
}

func (r *ConversationArchiveRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationArchiveRepositoryImpl) Create(ctx context.Context, archive *entity.ConversationArchive) error {
	m, err := r.mapper.ToModel(archive)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contract.ErrArchiveExists
		}
		return err
	}
	archive.Id = m.Id
	archive.CreatedAt = m.CreatedAt
	return nil
}

func (r *ConversationArchiveRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationArchive, error) {
	var m model.ConversationArchive
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ConversationArchiveRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationArchive, error) {
	var models []*model.ConversationArchive
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	archives := make([]*entity.ConversationArchive, 0, len(models))
	for _, m := range models {
		a, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, nil
}

func (r *ConversationArchiveRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConversationArchive{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
