package flow

import (
	"context"
	"sync"

	"github.com/catchuapp/catchu/gateway"
)

type createCall struct {
	collection string
	fields     map[string]interface{}
}

// fakeGateway is a synchronous recording stand-in for the remote gateway.
// Tests drive subscriptions by hand through push and pushErr.
type fakeGateway struct {
	mu sync.Mutex

	createCalls []createCall
	createErr   error
	nextId      string

	getFields map[string]interface{}
	getErr    error

	lastQuery    gateway.Query
	subscribeErr error
	handler      gateway.SnapshotHandler
	unsubscribed int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextId: "new_doc_id"}
}

func (f *fakeGateway) CreateDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createCalls = append(f.createCalls, createCall{collection: collection, fields: fields})
	return f.nextId, nil
}

func (f *fakeGateway) GetDocument(ctx context.Context, collection string, id string) (map[string]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getFields, nil
}

func (f *fakeGateway) QueryDocuments(ctx context.Context, collection string, q gateway.Query) (gateway.Snapshot, error) {
	return nil, nil
}

func (f *fakeGateway) Subscribe(ctx context.Context, collection string, q gateway.Query, handler gateway.SnapshotHandler) (gateway.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.lastQuery = q
	f.handler = handler
	return gateway.OnceUnsubscribe(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed++
		f.handler = nil
	}), nil
}

// push delivers a snapshot to the active subscription, synchronously.
func (f *fakeGateway) push(snapshot gateway.Snapshot) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(snapshot, nil)
	}
}

func (f *fakeGateway) pushErr(err error) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(nil, err)
	}
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createCalls)
}

func (f *fakeGateway) lastCall() createCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls[len(f.createCalls)-1]
}
