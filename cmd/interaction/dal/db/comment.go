package db

import (
	"context"
	"errors"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/HuaTug/video-comment/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentDB stores comments in MySQL. Pagination is done with OFFSET/LIMIT
// plus a COUNT on the same filter.
type CommentDB struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
}

func NewCommentDB(db *gorm.DB, timeout time.Duration) *CommentDB {
	return &CommentDB{db: db, timeout: timeout, now: time.Now}
}

func (s *CommentDB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func checkID(id string) error {
	if !utils.ValidIdentifier(id) {
		return errno.ParamErr.WithMessage("Invalid identifier: " + id)
	}
	return nil
}

func (s *CommentDB) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if err := checkID(comment.Video); err != nil {
		return nil, err
	}
	if err := checkID(comment.Owner); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	record := &model.Comment{
		ID:        utils.GenerateCommentID(),
		Content:   comment.Content,
		Video:     comment.Video,
		Owner:     comment.Owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (s *CommentDB) FindByIDAndUpdate(ctx context.Context, commentID, content string) (*model.Comment, error) {
	if err := checkID(commentID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var comment model.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", commentID).First(&comment).Error; err != nil {
			return err
		}
		comment.Content = content
		comment.UpdatedAt = s.now()
		return tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Updates(map[string]interface{}{"content": comment.Content, "updated_at": comment.UpdatedAt}).Error
	})
	if err != nil {
		return nil, convertErr(err)
	}
	return &comment, nil
}

func (s *CommentDB) FindByIDAndDelete(ctx context.Context, commentID string) (*model.Comment, error) {
	if err := checkID(commentID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var comment model.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", commentID).First(&comment).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", commentID).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, convertErr(err)
	}
	return &comment, nil
}

func (s *CommentDB) AggregatePaginate(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, error) {
	if err := checkID(videoID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, err
	}

	docs := make([]*model.Comment, 0, opts.Limit)
	if total > opts.Skip() {
		if err := s.db.WithContext(ctx).Model(&model.Comment{}).
			Where("video_id = ?", videoID).
			Order("created_at DESC").Order("id DESC").
			Offset(int(opts.Skip())).Limit(int(opts.Limit)).
			Find(&docs).Error; err != nil {
			return nil, err
		}
	}
	return model.NewCommentPage(docs, total, opts), nil
}

func convertErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errno.NotFoundErr.WithMessage("Comment not found")
	}
	return err
}
