package flow

import (
	"context"
	"testing"
	"time"

	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postListRecorder struct {
	updates [][]model.Post
	errs    []error
}

func (r *postListRecorder) onUpdate(posts []model.Post) {
	r.updates = append(r.updates, posts)
}

func (r *postListRecorder) onError(err error) {
	r.errs = append(r.errs, err)
}

func postDoc(id string, createDate interface{}) gateway.Document {
	return gateway.Document{Id: id, Fields: map[string]interface{}{
		"title":      "title " + id,
		"content":    "content " + id,
		"createDate": createDate,
	}}
}

func TestPostList_RequestsOrderedQuery(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	require.NotNil(t, g.lastQuery.OrderBy)
	assert.Equal(t, "createDate", g.lastQuery.OrderBy.Field)
	assert.True(t, g.lastQuery.OrderBy.Desc)
	assert.Nil(t, g.lastQuery.Filter)
}

func TestPostList_NothingEmittedBeforeFirstSnapshot(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	assert.Len(t, rec.updates, 0)
}

func TestPostList_SortsDescendingRegardlessOfDeliveryOrder(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// delivered oldest first on purpose
	g.push(gateway.Snapshot{
		postDoc("p_old", base),
		postDoc("p_mid", base.Add(time.Minute)),
		postDoc("p_new", base.Add(time.Hour)),
	})

	require.Len(t, rec.updates, 1)
	posts := rec.updates[0]
	require.Len(t, posts, 3)
	assert.Equal(t, "p_new", posts[0].Id)
	assert.Equal(t, "p_mid", posts[1].Id)
	assert.Equal(t, "p_old", posts[2].Id)
}

func TestPostList_EveryPushReplacesWholeList(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g.push(gateway.Snapshot{postDoc("p1", base)})
	g.push(gateway.Snapshot{postDoc("p1", base), postDoc("p2", base.Add(time.Minute))})

	require.Len(t, rec.updates, 2)
	assert.Len(t, rec.updates[0], 1)
	assert.Len(t, rec.updates[1], 2)
}

func TestPostList_SkipsMalformedDocuments(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	g.push(gateway.Snapshot{
		postDoc("p1", time.Now()),
		{Id: "broken", Fields: map[string]interface{}{"content": "no title"}},
	})

	require.Len(t, rec.updates, 1)
	require.Len(t, rec.updates[0], 1)
	assert.Equal(t, "p1", rec.updates[0][0].Id)
}

func TestPostList_MidStreamErrorSurfacedOnceThenStops(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)
	defer unsubscribe()

	g.pushErr(assert.AnError)
	require.Len(t, rec.errs, 1)
	assert.True(t, IsKind(rec.errs[0], KindSubscription))

	// dead after the first error: no more updates, no repeated errors
	g.push(gateway.Snapshot{postDoc("p1", time.Now())})
	g.pushErr(assert.AnError)
	assert.Len(t, rec.updates, 0)
	assert.Len(t, rec.errs, 1)
}

func TestPostList_SetupFailure(t *testing.T) {
	g := newFakeGateway()
	g.subscribeErr = assert.AnError

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), func([]model.Post) {}, nil)
	assert.Nil(t, unsubscribe)
	assert.True(t, IsKind(err, KindSubscription))
}

func TestPostList_UnsubscribeIsIdempotent(t *testing.T) {
	g := newFakeGateway()
	rec := &postListRecorder{}

	unsubscribe, err := NewPostList(g).Subscribe(context.Background(), rec.onUpdate, rec.onError)
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, g.unsubscribed)

	// detached subscriptions deliver nothing
	g.push(gateway.Snapshot{postDoc("p1", time.Now())})
	assert.Len(t, rec.updates, 0)
}
