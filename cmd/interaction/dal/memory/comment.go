package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/HuaTug/video-comment/pkg/utils"
)

// CommentStore keeps comments in process memory. It backs local development
// (storage.driver: memory) and the handler tests.
type CommentStore struct {
	mu       sync.RWMutex
	seq      uint64
	comments map[string]*model.Comment
	now      func() time.Time
}

func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments: make(map[string]*model.Comment),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for createdAt/updatedAt.
func (s *CommentStore) WithClock(now func() time.Time) *CommentStore {
	s.now = now
	return s
}

func checkID(id string) error {
	if !utils.ValidIdentifier(id) {
		return errno.ParamErr.WithMessage("Invalid identifier: " + id)
	}
	return nil
}

func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if err := checkID(comment.Video); err != nil {
		return nil, err
	}
	if err := checkID(comment.Owner); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	now := s.now()
	record := &model.Comment{
		ID:        fmt.Sprintf("%024x", s.seq),
		Content:   comment.Content,
		Video:     comment.Video,
		Owner:     comment.Owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.comments[record.ID] = record
	out := *record
	return &out, nil
}

func (s *CommentStore) FindByIDAndUpdate(ctx context.Context, commentID, content string) (*model.Comment, error) {
	if err := checkID(commentID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.comments[commentID]
	if !ok {
		return nil, errno.NotFoundErr.WithMessage("Comment not found")
	}
	record.Content = content
	record.UpdatedAt = s.now()
	out := *record
	return &out, nil
}

func (s *CommentStore) FindByIDAndDelete(ctx context.Context, commentID string) (*model.Comment, error) {
	if err := checkID(commentID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.comments[commentID]
	if !ok {
		return nil, errno.NotFoundErr.WithMessage("Comment not found")
	}
	delete(s.comments, commentID)
	return record, nil
}

func (s *CommentStore) AggregatePaginate(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, error) {
	if err := checkID(videoID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	matched := make([]*model.Comment, 0)
	for _, c := range s.comments {
		if c.Video == videoID {
			cp := *c
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := opts.Skip()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return model.NewCommentPage(matched[start:end], total, opts), nil
}

// Len returns the number of stored comments.
func (s *CommentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}
