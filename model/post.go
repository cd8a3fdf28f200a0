package model

import (
	"time"

	"github.com/pkg/errors"
)

// PostCollection is the gateway collection holding all Post documents.
const PostCollection = "posts"

/*

Post is a single piece of community writing

Id: gateway assigned document id, immutable
Title: post's title in plain text, non-empty after trimming
Content: post's body in plain text, non-empty after trimming
ImageUrl: resolved blob store url of the attached image, nil when the author
	attached no image. A post is never written with a dangling image reference,
	the upload must resolve before the document write happens.
CreateDate:
	server assigned creation timestamp, the sole ordering key for post lists.
	A freshly written document may deliver with the timestamp still pending
	resolution, decode treats it as "now" until the resolved value arrives in
	a later push.
UserId / UserEmail: author identity snapshot taken at creation time, never
	updated afterwards

A Post is immutable once created, there is no update or delete.
*/
type Post struct {
	Id         string    `firestore:"-"`
	Title      string    `firestore:"title"`
	Content    string    `firestore:"content"`
	ImageUrl   *string   `firestore:"imageUrl"`
	CreateDate time.Time `firestore:"createDate"`
	UserId     string    `firestore:"userId"`
	UserEmail  string    `firestore:"userEmail"`
}

// DecodePost validates and decodes a raw gateway document into a Post.
// Documents missing title or content are rejected instead of trusting field
// presence implicitly.
func DecodePost(id string, fields map[string]interface{}) (*Post, error) {
	title, ok := stringField(fields, "title")
	if !ok {
		return nil, errors.New("post document " + id + " has no title")
	}
	content, ok := stringField(fields, "content")
	if !ok {
		return nil, errors.New("post document " + id + " has no content")
	}

	post := &Post{
		Id:         id,
		Title:      title,
		Content:    content,
		CreateDate: timeField(fields, "createDate"),
	}
	if url, ok := stringField(fields, "imageUrl"); ok {
		post.ImageUrl = &url
	}
	post.UserId, _ = stringField(fields, "userId")
	post.UserEmail, _ = stringField(fields, "userEmail")
	return post, nil
}

func stringField(fields map[string]interface{}, key string) (string, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// timeField reads a server assigned timestamp. A missing or still pending
// (nil) timestamp is treated as "now" so a just-created document sorts to the
// top until the resolved value is delivered.
func timeField(fields map[string]interface{}, key string) time.Time {
	v, ok := fields[key]
	if !ok || v == nil {
		return time.Now()
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Now()
	}
	return t
}
