package model

import "time"

// Comment is a user's comment on a video. Video and Owner reference the
// video and user entities by id.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Video     string    `gorm:"column:video_id;size:64;not null;index:idx_video_created,priority:1" json:"video"`
	Owner     string    `gorm:"column:owner_id;size:64;not null;index" json:"owner"`
	CreatedAt time.Time `gorm:"not null;index:idx_video_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

// PageOptions selects a window of a newest-first comment listing. Page and
// Limit are 1-based and already validated by the caller, including
// Page <= MaxInt64/Limit so that Skip cannot overflow.
type PageOptions struct {
	Page  int64
	Limit int64
}

func (o PageOptions) Skip() int64 {
	return (o.Page - 1) * o.Limit
}

// CommentPage is the aggregate-paginate result returned to clients.
type CommentPage struct {
	Docs          []*Comment `json:"docs"`
	TotalDocs     int64      `json:"totalDocs"`
	Limit         int64      `json:"limit"`
	Page          int64      `json:"page"`
	TotalPages    int64      `json:"totalPages"`
	PagingCounter int64      `json:"pagingCounter"`
	HasPrevPage   bool       `json:"hasPrevPage"`
	HasNextPage   bool       `json:"hasNextPage"`
	PrevPage      *int64     `json:"prevPage"`
	NextPage      *int64     `json:"nextPage"`
}

// NewCommentPage fills the page metadata from the total count. Docs is never
// nil so an empty listing serialises as [].
func NewCommentPage(docs []*Comment, total int64, opts PageOptions) *CommentPage {
	if docs == nil {
		docs = []*Comment{}
	}
	page := &CommentPage{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         opts.Limit,
		Page:          opts.Page,
		PagingCounter: opts.Skip() + 1,
	}
	if opts.Limit > 0 {
		page.TotalPages = (total + opts.Limit - 1) / opts.Limit
	}
	if opts.Page > 1 {
		prev := opts.Page - 1
		page.HasPrevPage = true
		page.PrevPage = &prev
	}
	if opts.Page < page.TotalPages {
		next := opts.Page + 1
		page.HasNextPage = true
		page.NextPage = &next
	}
	return page
}
