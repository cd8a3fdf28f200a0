package model

import (
	"time"

	"github.com/pkg/errors"
)

// CommentCollection is the gateway collection holding all Comment documents.
const CommentCollection = "comments"

/*

Comment is a reply attached to exactly one Post

Id: gateway assigned document id
PostId: foreign reference to the owning Post, set at creation, never changed.
	Filtering by PostId is done at query time by the gateway, and defensively
	nowhere else.
Content: reply body in plain text, non-empty after trimming
UserEmail / UserId: author identity snapshot taken at creation time
CreateDate: server assigned timestamp, comments sort newest first

A Comment is immutable once created.
*/
type Comment struct {
	Id         string    `firestore:"-"`
	PostId     string    `firestore:"postId"`
	Content    string    `firestore:"content"`
	UserEmail  string    `firestore:"userEmail"`
	UserId     string    `firestore:"userId"`
	CreateDate time.Time `firestore:"createDate"`
}

// DecodeComment validates and decodes a raw gateway document into a Comment.
func DecodeComment(id string, fields map[string]interface{}) (*Comment, error) {
	postId, ok := stringField(fields, "postId")
	if !ok {
		return nil, errors.New("comment document " + id + " has no postId")
	}
	content, ok := stringField(fields, "content")
	if !ok {
		return nil, errors.New("comment document " + id + " has no content")
	}

	comment := &Comment{
		Id:         id,
		PostId:     postId,
		Content:    content,
		CreateDate: timeField(fields, "createDate"),
	}
	comment.UserEmail, _ = stringField(fields, "userEmail")
	comment.UserId, _ = stringField(fields, "userId")
	return comment, nil
}
