package flow

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/catchuapp/catchu/file_store"
	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	"github.com/catchuapp/catchu/session"
	Logger "github.com/catchuapp/catchu/utils/log"
)

// LocalImage is a device-local attachment picked by the author, not yet
// uploaded anywhere.
type LocalImage struct {
	Name string
	Body io.Reader
}

// Draft is unsaved post content prior to submission.
type Draft struct {
	Title   string
	Content string
	Image   *LocalImage
}

// PostSubmitter validates a draft, uploads the attached image if there is
// one, then writes the post document. The post is never written without a
// successfully resolved image url when an image was supplied.
type PostSubmitter struct {
	gateway gateway.DocumentGateway
	files   file_store.UploadFileStore
	session *session.Session

	submitting int32
}

func NewPostSubmitter(g gateway.DocumentGateway, files file_store.UploadFileStore, s *session.Session) *PostSubmitter {
	return &PostSubmitter{gateway: g, files: files, session: s}
}

// Submitting reports whether a submission is currently in flight, for the
// screen to disable its submit button.
func (p *PostSubmitter) Submitting() bool {
	return atomic.LoadInt32(&p.submitting) == 1
}

// Submit runs the whole submission: validate, upload, write. Only one
// submission may be in flight at a time, the gateway does not deduplicate.
func (p *PostSubmitter) Submit(ctx context.Context, draft Draft) (string, error) {
	if !atomic.CompareAndSwapInt32(&p.submitting, 0, 1) {
		return "", newError(KindValidation, "A submission is already in progress.")
	}
	defer atomic.StoreInt32(&p.submitting, 0)

	if strings.TrimSpace(draft.Title) == "" {
		return "", newError(KindValidation, "Please enter a title.")
	}
	if strings.TrimSpace(draft.Content) == "" {
		return "", newError(KindValidation, "Please enter some content.")
	}

	// author snapshot is taken at the moment of submission
	user := p.session.CurrentUser()
	if user == nil {
		return "", newError(KindAuth, "Please log in to write a post.")
	}

	var imageUrl interface{}
	if draft.Image != nil {
		key := file_store.GenerateUploadKey(draft.Image.Name)
		if err := p.files.Upload(ctx, key, draft.Image.Body); err != nil {
			return "", wrapError(KindUpload, err, "fail to upload attached image")
		}
		imageUrl = p.files.GetUrlFromKey(key)
	}

	id, err := p.gateway.CreateDocument(ctx, model.PostCollection, map[string]interface{}{
		"title":      draft.Title,
		"content":    draft.Content,
		"imageUrl":   imageUrl,
		"userId":     user.Uid,
		"userEmail":  user.Email,
		"createDate": gateway.ServerTimestamp,
	})
	if err != nil {
		return "", wrapError(KindWrite, err, "fail to write post")
	}

	Logger.Log.Info("post ", id, " submitted by ", user.Email)
	return id, nil
}
