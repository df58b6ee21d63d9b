package storage

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Provider stores files in a bucket under an optional key prefix
type S3Provider struct {
	api    s3iface.S3API
	bucket string
	prefix string
}

// NewS3Provider creates an S3Provider
func NewS3Provider(sess *session.Session, bucket, prefix string) *S3Provider {
	return &S3Provider{api: s3.New(sess), bucket: bucket, prefix: prefix}
}

func (s *S3Provider) objectKey(key string) (string, error) {
	if key == "" || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	for _, r := range key {
		if r == '/' || r == '\\' {
			return "", ErrInvalidKey
		}
	}
	return s.prefix + key, nil
}

// Put uploads body to key
func (s *S3Provider) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err = s.api.PutObjectWithContext(ctx, input)
	return err
}

// Get downloads key
func (s *S3Provider) Get(ctx context.Context, key string) (*Object, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}

	return &Object{
		Body:          out.Body,
		ContentType:   aws.StringValue(out.ContentType),
		ContentLength: aws.Int64Value(out.ContentLength),
		LastModified:  aws.TimeValue(out.LastModified),
	}, nil
}

// Delete removes key
func (s *S3Provider) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey
}
