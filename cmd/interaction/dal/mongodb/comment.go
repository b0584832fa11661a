package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/HuaTug/video-comment/pkg/errno"
	"github.com/opentracing/opentracing-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Video     primitive.ObjectID `bson:"video"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *commentDocument) toModel() *model.Comment {
	return &model.Comment{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Video:     d.Video.Hex(),
		Owner:     d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CommentCollection stores comments as documents whose video and owner
// fields are ObjectID references.
type CommentCollection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewCommentCollection(coll *mongo.Collection, timeout time.Duration) *CommentCollection {
	return &CommentCollection{coll: coll, timeout: timeout}
}

func (c *CommentCollection) begin(ctx context.Context, op string) (context.Context, func()) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mongo.comments."+op)
	span.SetTag("db.type", "mongo")
	span.SetTag("db.collection", c.coll.Name())
	if c.timeout <= 0 {
		return ctx, span.Finish
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		span.Finish()
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errno.ParamErr.WithMessage("Invalid identifier: " + id)
	}
	return oid, nil
}

func (c *CommentCollection) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	video, err := parseObjectID(comment.Video)
	if err != nil {
		return nil, err
	}
	owner, err := parseObjectID(comment.Owner)
	if err != nil {
		return nil, err
	}
	ctx, done := c.begin(ctx, "create")
	defer done()

	// BSON dates keep millisecond precision
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := &commentDocument{
		ID:        primitive.NewObjectID(),
		Content:   comment.Content,
		Video:     video,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (c *CommentCollection) FindByIDAndUpdate(ctx context.Context, commentID, content string) (*model.Comment, error) {
	oid, err := parseObjectID(commentID)
	if err != nil {
		return nil, err
	}
	ctx, done := c.begin(ctx, "find_and_update")
	defer done()

	update := bson.M{
		"$set": bson.M{
			"content":   content,
			"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	var doc commentDocument
	err = c.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, convertErr(err)
	}
	return doc.toModel(), nil
}

func (c *CommentCollection) FindByIDAndDelete(ctx context.Context, commentID string) (*model.Comment, error) {
	oid, err := parseObjectID(commentID)
	if err != nil {
		return nil, err
	}
	ctx, done := c.begin(ctx, "find_and_delete")
	defer done()

	var doc commentDocument
	if err := c.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, convertErr(err)
	}
	return doc.toModel(), nil
}

type pageResult struct {
	Docs  []commentDocument `bson:"docs"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// paginatePipeline filters by video, sorts newest first and computes the
// window and the total in one round trip.
func paginatePipeline(video primitive.ObjectID, opts model.PageOptions) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "video", Value: video}}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "docs", Value: bson.A{
				bson.D{{Key: "$skip", Value: opts.Skip()}},
				bson.D{{Key: "$limit", Value: opts.Limit}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			}},
		}}},
	}
}

func (c *CommentCollection) AggregatePaginate(ctx context.Context, videoID string, opts model.PageOptions) (*model.CommentPage, error) {
	video, err := parseObjectID(videoID)
	if err != nil {
		return nil, err
	}
	ctx, done := c.begin(ctx, "aggregate_paginate")
	defer done()

	cursor, err := c.coll.Aggregate(ctx, paginatePipeline(video, opts))
	if err != nil {
		return nil, err
	}
	var results []pageResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	var total int64
	docs := make([]*model.Comment, 0, opts.Limit)
	if len(results) > 0 {
		if len(results[0].Total) > 0 {
			total = results[0].Total[0].Count
		}
		for i := range results[0].Docs {
			docs = append(docs, results[0].Docs[i].toModel())
		}
	}
	return model.NewCommentPage(docs, total, opts), nil
}

func convertErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errno.NotFoundErr.WithMessage("Comment not found")
	}
	return err
}
