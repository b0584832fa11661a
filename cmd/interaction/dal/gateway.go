package dal

import (
	"context"

	"github.com/HuaTug/video-comment/cmd/model"
)

// CommentGateway is the persistence boundary for comments. Implementations
// return errno.ParamErr for identifiers they cannot parse and
// errno.NotFoundErr when no comment matches.
type CommentGateway interface {
	Create(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	// FindByIDAndUpdate replaces the content of one comment and returns the
	// record as it is after the update.
	FindByIDAndUpdate(ctx context.Context, commentID, content string) (*model.Comment, error)
	// FindByIDAndDelete removes one comment and returns what was removed. Of
	// two concurrent deletes of the same id at most one succeeds.
	FindByIDAndDelete(ctx context.Context, commentID string) (*model.Comment, error)
	// AggregatePaginate lists the comments of one video newest first.
	AggregatePaginate(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, error)
}
