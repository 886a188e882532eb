package coldstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-surveillance/core/pkg/fusion"
)

// fakeS3 is a minimal in-memory stand-in for the S3 REST API, just enough
// to exercise path-style PutObject/GetObject: PUT stores the raw body under
// the request path, GET returns it back, and a miss is a 404.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *httptest.Server {
	f := &fakeS3{objects: make(map[string][]byte)}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.objects[r.URL.Path] = body
			f.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			f.mu.Lock()
			body, ok := f.objects[r.URL.Path]
			f.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func testAWSConfig() aws.Config {
	return aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("test", "test", ""),
	}
}

func TestS3Archive_StoreAndFetchRoundTrip(t *testing.T) {
	srv := newFakeS3()
	defer srv.Close()

	archive := NewS3Archive(testAWSConfig(), "bucket", "cold", nil, WithS3Endpoint(srv.URL))

	record := &fusion.FusedRecord{
		RecordID:  "r1",
		SubjectID: "s1",
		EventType: fusion.EventDiagnosis,
		Retention: fusion.RetentionCold,
	}
	require.NoError(t, archive.Store(context.Background(), record))

	fetched, err := archive.Fetch(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, record.RecordID, fetched.RecordID)
	assert.Equal(t, record.SubjectID, fetched.SubjectID)
}

func TestS3Archive_FetchMissingRecordErrors(t *testing.T) {
	srv := newFakeS3()
	defer srv.Close()

	archive := NewS3Archive(testAWSConfig(), "bucket", "cold", nil, WithS3Endpoint(srv.URL))
	_, err := archive.Fetch(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestS3Archive_KeyUsesPrefix(t *testing.T) {
	archive := NewS3Archive(testAWSConfig(), "bucket", "cold", nil)
	assert.Equal(t, "cold/r1.json", archive.key("r1"))

	noPrefix := NewS3Archive(testAWSConfig(), "bucket", "", nil)
	assert.Equal(t, "r1.json", noPrefix.key("r1"))
}

type stubIndex struct {
	mu    sync.Mutex
	store map[string]string
}

func newStubIndex() *stubIndex { return &stubIndex{store: make(map[string]string)} }

func (s *stubIndex) Put(_ context.Context, recordID, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[recordID] = location
	return nil
}

func (s *stubIndex) Get(_ context.Context, recordID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.store[recordID]
	if !ok {
		return "", assertErrIndex("not found")
	}
	return loc, nil
}

type assertErrIndex string

func (e assertErrIndex) Error() string { return string(e) }

func TestS3Archive_StoreUpdatesIndex(t *testing.T) {
	srv := newFakeS3()
	defer srv.Close()

	idx := newStubIndex()
	archive := NewS3Archive(testAWSConfig(), "bucket", "cold", idx, WithS3Endpoint(srv.URL))

	record := &fusion.FusedRecord{RecordID: "r9"}
	require.NoError(t, archive.Store(context.Background(), record))

	loc, err := idx.Get(context.Background(), "r9")
	require.NoError(t, err)
	assert.Equal(t, "cold/r9.json", loc)
}
