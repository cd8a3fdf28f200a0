package file_store

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
)

// FakeFileStore records uploads in memory for tests. Set UploadErr to make
// every Upload fail.
type FakeFileStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	UploadErr error
}

func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{uploads: make(map[string][]byte)}
}

func (f *FakeFileStore) Upload(ctx context.Context, key string, body io.Reader) error {
	if f.UploadErr != nil {
		return f.UploadErr
	}
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = data
	return nil
}

func (f *FakeFileStore) GetUrlFromKey(key string) string {
	return "https://fake-cdn.test/" + key
}

// UploadCount reports how many uploads landed.
func (f *FakeFileStore) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// Uploaded returns the stored bytes for key and whether the key exists.
func (f *FakeFileStore) Uploaded(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.uploads[key]
	return data, ok
}
