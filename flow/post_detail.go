package flow

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	"github.com/catchuapp/catchu/session"
	Logger "github.com/catchuapp/catchu/utils/log"
	"github.com/pkg/errors"
)

// PostDetail backs the single-post screen: a one-shot fetch of the post, an
// independent live query over its comments, and comment submission. The two
// may resolve in either order, the comment subscription never assumes the
// post has already loaded.
type PostDetail struct {
	gateway gateway.DocumentGateway
	session *session.Session

	posting int32
}

func NewPostDetail(g gateway.DocumentGateway, s *session.Session) *PostDetail {
	return &PostDetail{gateway: g, session: s}
}

// LoadPost fetches one post by id. A missing document is KindNotFound,
// distinct from a transport failure.
func (p *PostDetail) LoadPost(ctx context.Context, id string) (*model.Post, error) {
	fields, err := p.gateway.GetDocument(ctx, model.PostCollection, id)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, wrapError(KindNotFound, err, "This post no longer exists.")
	}
	if err != nil {
		return nil, wrapError(KindFetch, err, "fail to load post")
	}

	post, err := model.DecodePost(id, fields)
	if err != nil {
		return nil, wrapError(KindFetch, err, "malformed post document")
	}
	return post, nil
}

// SubscribeComments establishes a live query over the comments of postId.
// Filtering happens at query time by the gateway and defensively nowhere
// else. Every push replaces the whole comment list, sorted newest first.
func (p *PostDetail) SubscribeComments(ctx context.Context, postId string, onUpdate func([]model.Comment), onError func(error)) (gateway.Unsubscribe, error) {
	var failed int32

	unsubscribe, err := p.gateway.Subscribe(ctx, model.CommentCollection, gateway.Query{
		Filter:  &gateway.FieldFilter{Field: "postId", Value: postId},
		OrderBy: &gateway.Order{Field: "createDate", Desc: true},
	}, func(snapshot gateway.Snapshot, err error) {
		if atomic.LoadInt32(&failed) == 1 {
			return
		}
		if err != nil {
			atomic.StoreInt32(&failed, 1)
			Logger.Log.Warn("comment subscription for post ", postId, " failed: ", err)
			if onError != nil {
				onError(wrapError(KindSubscription, err, "fail to keep comments up to date"))
			}
			return
		}
		onUpdate(decodeComments(snapshot))
	})
	if err != nil {
		return nil, wrapError(KindSubscription, err, "fail to subscribe to comments")
	}
	return unsubscribe, nil
}

// Posting reports whether a comment submission is in flight.
func (p *PostDetail) Posting() bool {
	return atomic.LoadInt32(&p.posting) == 1
}

// PostComment writes a comment under postId. It deliberately does not splice
// the new comment into any local list: the live subscription is the sole
// source of truth, the screen shows the comment once the subscription
// re-delivers.
func (p *PostDetail) PostComment(ctx context.Context, postId string, text string) error {
	if !atomic.CompareAndSwapInt32(&p.posting, 0, 1) {
		return newError(KindValidation, "A comment is already being posted.")
	}
	defer atomic.StoreInt32(&p.posting, 0)

	if strings.TrimSpace(text) == "" {
		return newError(KindValidation, "Please enter a comment.")
	}

	user := p.session.CurrentUser()
	if user == nil {
		return newError(KindAuth, "Please log in to comment.")
	}

	_, err := p.gateway.CreateDocument(ctx, model.CommentCollection, map[string]interface{}{
		"postId":     postId,
		"content":    text,
		"userEmail":  user.Email,
		"userId":     user.Uid,
		"createDate": gateway.ServerTimestamp,
	})
	if err != nil {
		return wrapError(KindWrite, err, "fail to write comment")
	}
	return nil
}

// decodeComments maps raw documents to comments and sorts newest first.
// sort.SliceStable keeps gateway delivery order for equal timestamps, which
// collide at millisecond resolution. A comment whose timestamp is still
// pending decodes as "now" and therefore sorts to the top.
func decodeComments(snapshot gateway.Snapshot) []model.Comment {
	comments := make([]model.Comment, 0, len(snapshot))
	for _, doc := range snapshot {
		comment, err := model.DecodeComment(doc.Id, doc.Fields)
		if err != nil {
			Logger.Log.Warn("skipping malformed comment document: ", err)
			continue
		}
		comments = append(comments, *comment)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreateDate.After(comments[j].CreateDate)
	})
	return comments
}
