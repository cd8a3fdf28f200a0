package file_store

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

const (
	DevS3Bucket  = "catchu-dev-attachments"
	ProdS3Bucket = "catchu-attachments"
)

// S3FileStore stores post attachments in S3. Uploaded objects are served
// through a CDN prefix when CATCHU_CDN_PREFIX is set, otherwise straight
// from the bucket endpoint.
type S3FileStore struct {
	bucket   string
	region   string
	uploader *s3manager.Uploader
}

func NewS3FileStore(bucket string) (*S3FileStore, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-west-1"
	}

	sess, err := awssession.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to create aws session")
	}

	return &S3FileStore{
		bucket:   bucket,
		region:   region,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (s *S3FileStore) Upload(ctx context.Context, key string, body io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	return errors.Wrap(err, "fail to upload "+key+" to "+s.bucket)
}

func (s *S3FileStore) GetUrlFromKey(key string) string {
	if prefix := os.Getenv("CATCHU_CDN_PREFIX"); prefix != "" {
		return prefix + key
	}
	return "https://" + s.bucket + ".s3." + s.region + ".amazonaws.com/" + key
}
