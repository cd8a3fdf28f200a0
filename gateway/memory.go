package gateway

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// MemoryGateway implements the full DocumentGateway contract in memory. It
// backs unit tests and local development runs where no Firestore project is
// reachable.
//
// Every write publishes a notification on a per-collection topic of an
// in-process watermill bus; each live query owns a goroutine that re-runs its
// query on every notification and pushes the whole result set to its handler.
// Within one subscription pushes stay in publish order, matching the
// contract. Documents are deep-copied on the way out so a handler can never
// alias store state.
type MemoryGateway struct {
	mu sync.RWMutex
	// collections keeps documents in insertion order. Insertion order is the
	// delivery order subscribers observe for equal sort keys.
	collections map[string][]Document

	bus *gochannel.GoChannel
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string][]Document),
		bus: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 16},
			watermill.NopLogger{},
		),
	}
}

// resolveServerTimestamps substitutes the sentinel with the gateway's own
// clock, which plays the role of the server clock here.
func resolveServerTimestamps(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = time.Now()
			continue
		}
		out[k] = v
	}
	return out
}

func copyDocument(doc Document) Document {
	fields := map[string]interface{}{}
	copier.Copy(&fields, doc.Fields)
	return Document{Id: doc.Id, Fields: fields}
}

func (g *MemoryGateway) CreateDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.New().String()

	g.mu.Lock()
	g.collections[collection] = append(g.collections[collection], Document{
		Id:     id,
		Fields: resolveServerTimestamps(fields),
	})
	g.mu.Unlock()

	if err := g.bus.Publish(collection, message.NewMessage(watermill.NewUUID(), []byte(id))); err != nil {
		return "", errors.Wrap(err, "fail to notify subscribers of "+collection)
	}
	return id, nil
}

func (g *MemoryGateway) GetDocument(ctx context.Context, collection string, id string) (map[string]interface{}, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, doc := range g.collections[collection] {
		if doc.Id == id {
			return copyDocument(doc).Fields, nil
		}
	}
	return nil, ErrNotFound
}

func (g *MemoryGateway) QueryDocuments(ctx context.Context, collection string, q Query) (Snapshot, error) {
	return g.runQuery(collection, q), nil
}

func (g *MemoryGateway) runQuery(collection string, q Query) Snapshot {
	g.mu.RLock()
	snapshot := make(Snapshot, 0, len(g.collections[collection]))
	for _, doc := range g.collections[collection] {
		if q.Filter != nil && doc.Fields[q.Filter.Field] != q.Filter.Value {
			continue
		}
		snapshot = append(snapshot, copyDocument(doc))
	}
	g.mu.RUnlock()

	if q.OrderBy != nil {
		order := *q.OrderBy
		sort.SliceStable(snapshot, func(i, j int) bool {
			if order.Desc {
				i, j = j, i
			}
			return fieldLess(snapshot[i].Fields[order.Field], snapshot[j].Fields[order.Field])
		})
	}
	return snapshot
}

func fieldLess(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case int:
		bv, ok := b.(int)
		return ok && av < bv
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	}
	return false
}

func (g *MemoryGateway) Subscribe(ctx context.Context, collection string, q Query, handler SnapshotHandler) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := g.bus.Subscribe(subCtx, collection)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "fail to subscribe to "+collection)
	}

	// detached guards against a buffered notification landing on the handler
	// after the caller already unsubscribed
	var detached int32

	go func() {
		// initial snapshot right after subscription setup, so the consumer
		// always gets current state before any change push
		if atomic.LoadInt32(&detached) == 0 {
			handler(g.runQuery(collection, q), nil)
		}
		for msg := range messages {
			msg.Ack()
			if atomic.LoadInt32(&detached) == 1 {
				return
			}
			handler(g.runQuery(collection, q), nil)
		}
	}()

	return OnceUnsubscribe(func() {
		atomic.StoreInt32(&detached, 1)
		cancel()
	}), nil
}
