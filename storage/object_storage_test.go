package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Request struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []s3Request) {
	t.Helper()
	var mu sync.Mutex
	requests := make([]s3Request, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, s3Request{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		mu.Unlock()

		switch {
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>brewery-api</Name>
  <Prefix>silver/</Prefix>
  <KeyCount>2</KeyCount>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>silver/CA/breweries_silver_CA.parquet</Key><Size>10</Size></Contents>
  <Contents><Key>silver/NY/breweries_silver_NY.parquet</Key><Size>10</Size></Contents>
</ListBucketResult>`)
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	return server, func() []s3Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]s3Request{}, requests...)
	}
}

func newTestObjectStorage(t *testing.T, endpoint string) *ObjectStorage {
	t.Helper()
	options := NewObjectStorageOptionsFromStaticCredentials(endpoint, "us-east-1", "key", "secret", true)
	objectStorage, err := NewObjectStorage(context.Background(), testLogger(), *options)
	require.NoError(t, err)
	return objectStorage
}

func TestObjectStorage_Upload(t *testing.T) {
	server, requests := newFakeS3(t)
	objectStorage := newTestObjectStorage(t, server.URL)

	err := objectStorage.Upload(context.Background(), "brewery-api", "gold/breweries_gold.parquet", []byte("PAR1"))
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/brewery-api/gold/breweries_gold.parquet", reqs[0].path)
	assert.Equal(t, "application/vnd.apache.parquet", reqs[0].contentType)
	assert.Equal(t, []byte("PAR1"), reqs[0].body)
}

func TestObjectStorage_UploadFailureIsNotRetried(t *testing.T) {
	var mu sync.Mutex
	puts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.Method == http.MethodPut {
			mu.Lock()
			puts++
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>InternalError</Code><Message>We encountered an internal error.</Message></Error>`)
	}))
	t.Cleanup(server.Close)
	objectStorage := newTestObjectStorage(t, server.URL)

	err := objectStorage.Upload(context.Background(), "brewery-api", "bronze/breweries_bronze.parquet", []byte("PAR1"))
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, puts)
}

func TestObjectStorage_ListObjects(t *testing.T) {
	server, _ := newFakeS3(t)
	objectStorage := newTestObjectStorage(t, server.URL)

	keys, err := objectStorage.ListObjects(context.Background(), "brewery-api", "silver/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"silver/CA/breweries_silver_CA.parquet",
		"silver/NY/breweries_silver_NY.parquet",
	}, keys)
}

func TestObjectStorage_DownloadMissing(t *testing.T) {
	server, _ := newFakeS3(t)
	objectStorage := newTestObjectStorage(t, server.URL)

	_, err := objectStorage.Download(context.Background(), "brewery-api", "bronze/missing.parquet")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
