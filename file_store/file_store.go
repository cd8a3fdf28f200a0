package file_store

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadFileStore is the blob store half of the remote gateway: push bytes
// under a key, then resolve a durable public url for the key.
type UploadFileStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	GetUrlFromKey(key string) string
}

// GenerateUploadKey produces a fresh key for an attachment upload,
// collision-free by construction: millisecond timestamp plus a random
// suffix, keeping the original file extension so the CDN serves the right
// content type.
func GenerateUploadKey(fileName string) string {
	key := strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + uuid.New().String()
	return key + extWithDot(fileName)
}

func extWithDot(fileName string) string {
	ext := path.Ext(fileName)
	// strip url query leftovers like ".png?alt=media"
	if i := strings.IndexByte(ext, '?'); i >= 0 {
		ext = ext[:i]
	}
	return ext
}
