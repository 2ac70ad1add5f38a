package media

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"portfolio/internal/utils"
	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Host stores uploaded files and serves them by public URL.
type Host interface {
	Upload(ctx context.Context, file types.Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// ObjectAPI is the part of the S3 client used by S3Host.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Host struct {
	client  ObjectAPI
	bucket  string
	folder  string
	baseURL string
}

// NewS3Host uploads into bucket under folder. Public URLs are baseURL joined
// with the object key.
func NewS3Host(client ObjectAPI, bucket, folder, baseURL string) *S3Host {
	return &S3Host{
		client:  client,
		bucket:  bucket,
		folder:  strings.Trim(folder, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *S3Host) Upload(ctx context.Context, file types.Upload) (string, error) {
	key := h.objectKey(file)

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentType:   aws.String(contentType(file)),
		ContentLength: aws.Int64(int64(len(file.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return h.baseURL + "/" + key, nil
}

func (h *S3Host) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, h.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("url %s is not served from %s", url, h.baseURL)
	}

	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

func (h *S3Host) objectKey(file types.Upload) string {
	name := utils.NanoID() + extension(file)
	if h.folder == "" {
		return name
	}
	return path.Join(h.folder, name)
}

func extension(file types.Upload) string {
	if ext := strings.ToLower(path.Ext(file.Name)); ext != "" {
		return ext
	}
	if file.ContentType != "" {
		if exts, err := mime.ExtensionsByType(file.ContentType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ""
}

func contentType(file types.Upload) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if t := mime.TypeByExtension(extension(file)); t != "" {
		return t
	}
	return "application/octet-stream"
}
