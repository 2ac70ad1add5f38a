package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3HostUploadAndDelete(t *testing.T) {
	objects := &fakeObjects{}
	host := NewS3Host(objects, "media", "/construction-projects/", "https://cdn.test/")

	url, err := host.Upload(context.Background(), types.Upload{Name: "Bridge.PNG", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)

	require.Len(t, objects.puts, 1)
	put := objects.puts[0]
	key := aws.ToString(put.Key)
	assert.Equal(t, "media", aws.ToString(put.Bucket))
	assert.True(t, strings.HasPrefix(key, "construction-projects/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, []byte("png"), objects.bodies[0])
	assert.Equal(t, "https://cdn.test/"+key, url)

	require.NoError(t, host.Delete(context.Background(), url))
	assert.Equal(t, []string{key}, objects.deletes)

	err = host.Delete(context.Background(), "https://elsewhere.test/x.png")
	require.Error(t, err)
	assert.Len(t, objects.deletes, 1)
}

func TestS3HostUploadError(t *testing.T) {
	cause := errors.New("access denied")
	host := NewS3Host(&fakeObjects{err: cause}, "media", "", "https://cdn.test")

	_, err := host.Upload(context.Background(), types.Upload{Name: "a.jpg", Data: []byte("x")})
	require.ErrorIs(t, err, cause)
}

func TestContentTypeFallback(t *testing.T) {
	assert.Equal(t, "image/png", contentType(types.Upload{Name: "a.png"}))
	assert.Equal(t, "application/octet-stream", contentType(types.Upload{Name: "blob"}))
	assert.Equal(t, "image/webp", contentType(types.Upload{Name: "a", ContentType: "image/webp"}))
}

type flakyHost struct {
	mu       sync.Mutex
	failures int
	calls    map[string]int
}

func newFlakyHost(failures int) *flakyHost {
	return &flakyHost{failures: failures, calls: make(map[string]int)}
}

func (h *flakyHost) Upload(ctx context.Context, file types.Upload) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[file.Name]++
	if h.failures > 0 {
		h.failures--
		return "", errors.New("unavailable")
	}
	return "https://cdn.test/" + file.Name, nil
}

func (h *flakyHost) Delete(ctx context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[url]++
	if h.failures > 0 {
		h.failures--
		return errors.New("unavailable")
	}
	return nil
}

func (h *flakyHost) count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[key]
}

func TestBreakerHostOpensAfterConsecutiveFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	inner := newFlakyHost(10)
	host := NewBreakerHost(inner, logger, 2, time.Hour)

	for range 2 {
		_, err := host.Upload(context.Background(), types.Upload{Name: "a.png"})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, host.State())

	_, err := host.Upload(context.Background(), types.Upload{Name: "a.png"})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.count("a.png"), "open breaker does not reach the host")
	assert.NotEmpty(t, hook.Entries)
}

func TestBreakerHostPassesThrough(t *testing.T) {
	logger, _ := test.NewNullLogger()
	host := NewBreakerHost(newFlakyHost(0), logger, 2, time.Hour)

	url, err := host.Upload(context.Background(), types.Upload{Name: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/a.png", url)
	require.NoError(t, host.Delete(context.Background(), url))
}

func TestJanitorRetriesThenSucceeds(t *testing.T) {
	logger, hook := test.NewNullLogger()
	host := newFlakyHost(2)
	janitor := NewJanitor(host, logger, JanitorOptions{Retries: 3, Backoff: time.Millisecond})
	janitor.Start()

	janitor.Enqueue("https://cdn.test/a.png", "")
	require.NoError(t, janitor.Stop(context.Background()))

	assert.Equal(t, 3, host.count("https://cdn.test/a.png"))
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, "failed to remove remote media", entry.Message)
	}
}

func TestJanitorLogsFinalFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	host := newFlakyHost(100)
	janitor := NewJanitor(host, logger, JanitorOptions{Retries: 2, Backoff: time.Millisecond})
	janitor.Start()

	janitor.Enqueue("https://cdn.test/a.png")
	require.NoError(t, janitor.Stop(context.Background()))

	assert.Equal(t, 2, host.count("https://cdn.test/a.png"))
	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "failed to remove remote media", last.Message)
	assert.Equal(t, "https://cdn.test/a.png", last.Data["url"])
}

func TestJanitorDropsAfterStop(t *testing.T) {
	logger, hook := test.NewNullLogger()
	host := newFlakyHost(0)
	janitor := NewJanitor(host, logger, JanitorOptions{})
	janitor.Start()
	require.NoError(t, janitor.Stop(context.Background()))

	janitor.Enqueue("https://cdn.test/late.png")

	assert.Zero(t, host.count("https://cdn.test/late.png"))
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "janitor stopped")
}
