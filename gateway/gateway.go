// Package gateway defines the contract to the remote document database and
// the implementations this app talks to. All state lives behind this
// boundary, flows never touch a vendor SDK directly.
package gateway

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by GetDocument when no document exists at the
// requested id. Callers rely on errors.Is to tell it apart from transport
// failures.
var ErrNotFound = errors.New("document not found")

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value. A write carrying it gets the
// timestamp assigned by the backend's clock, not the client clock, so list
// ordering stays consistent across devices with clock drift.
var ServerTimestamp = serverTimestamp{}

// Document is one raw record as delivered by the gateway. Fields are decoded
// into typed records at the model boundary.
type Document struct {
	Id     string
	Fields map[string]interface{}
}

// Snapshot is the entire current result set of a query at one point in time.
// Subscriptions always deliver whole snapshots, never diffs.
type Snapshot []Document

// FieldFilter is an equality filter on a single field.
type FieldFilter struct {
	Field string
	Value interface{}
}

// Order sorts the result set by a single field.
type Order struct {
	Field string
	Desc  bool
}

// Query is the small query surface the app needs: at most one equality
// filter and one ordering key.
type Query struct {
	Filter  *FieldFilter
	OrderBy *Order
}

// SnapshotHandler receives every push of a live query. Once a handler is
// invoked with a non-nil error the subscription is dead: the error is
// surfaced exactly once and no further pushes are delivered.
type SnapshotHandler func(snapshot Snapshot, err error)

// Unsubscribe detaches a live query. It must be invoked exactly once when
// the owning screen tears down, and is safe to invoke more than once.
type Unsubscribe func()

// DocumentGateway is the abstract contract of the remote document database.
type DocumentGateway interface {
	// CreateDocument writes a new document and returns its server assigned
	// id. ServerTimestamp sentinel values are resolved server-side.
	CreateDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error)

	// GetDocument is a one-shot fetch by id. Returns ErrNotFound when the
	// document does not exist.
	GetDocument(ctx context.Context, collection string, id string) (map[string]interface{}, error)

	// QueryDocuments is a one-shot query.
	QueryDocuments(ctx context.Context, collection string, q Query) (Snapshot, error)

	// Subscribe establishes a live query. The handler is invoked once per
	// change with the entire current result set. Pushes within a single
	// subscription are delivered in order, no ordering is guaranteed across
	// independent subscriptions.
	Subscribe(ctx context.Context, collection string, q Query, handler SnapshotHandler) (Unsubscribe, error)
}

// OnceUnsubscribe wraps detach so the returned handle detaches exactly once
// no matter how many times it is invoked.
func OnceUnsubscribe(detach func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(detach)
	}
}
