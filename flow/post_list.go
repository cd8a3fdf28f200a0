package flow

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	Logger "github.com/catchuapp/catchu/utils/log"
)

// PostList is the view-model behind the post list screen: a live query over
// the post collection, newest first. Until the first snapshot arrives
// nothing is emitted, the screen's initial state is its loading state.
type PostList struct {
	gateway gateway.DocumentGateway
}

func NewPostList(g gateway.DocumentGateway) *PostList {
	return &PostList{gateway: g}
}

// Subscribe establishes the live query. Every push replaces the whole list,
// there is no diffing. onError may be nil; a failed subscription surfaces
// the error once and delivers nothing afterwards. The returned handle must
// be invoked when the screen tears down, otherwise the subscription leaks.
func (l *PostList) Subscribe(ctx context.Context, onUpdate func([]model.Post), onError func(error)) (gateway.Unsubscribe, error) {
	var failed int32

	unsubscribe, err := l.gateway.Subscribe(ctx, model.PostCollection, gateway.Query{
		OrderBy: &gateway.Order{Field: "createDate", Desc: true},
	}, func(snapshot gateway.Snapshot, err error) {
		if atomic.LoadInt32(&failed) == 1 {
			return
		}
		if err != nil {
			atomic.StoreInt32(&failed, 1)
			Logger.Log.Warn("post list subscription failed: ", err)
			if onError != nil {
				onError(wrapError(KindSubscription, err, "fail to keep the post list up to date"))
			}
			return
		}
		onUpdate(decodePosts(snapshot))
	})
	if err != nil {
		return nil, wrapError(KindSubscription, err, "fail to subscribe to the post list")
	}
	return unsubscribe, nil
}

// decodePosts maps raw documents to posts and re-sorts descending by
// creation time. The gateway is expected to deliver sorted results already,
// the re-sort tolerates out-of-order delivery. Pure, so it is testable
// without a live connection.
func decodePosts(snapshot gateway.Snapshot) []model.Post {
	posts := make([]model.Post, 0, len(snapshot))
	for _, doc := range snapshot {
		post, err := model.DecodePost(doc.Id, doc.Fields)
		if err != nil {
			Logger.Log.Warn("skipping malformed post document: ", err)
			continue
		}
		posts = append(posts, *post)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreateDate.After(posts[j].CreateDate)
	})
	return posts
}
