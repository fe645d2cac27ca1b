package taxonomy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/httpclient"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	idx, err := OpenIndex(filepath.Join(root, "index"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	fetcher := httpclient.New(arbor.NewLogger())
	return NewResolver(filepath.Join(root, "cache"), fetcher, idx, arbor.NewLogger()), srv
}

func TestResolver_FetchesAndCachesOnce(t *testing.T) {
	var hits int32
	resolver, srv := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<xsd/>"))
	})

	path1, err := resolver.Resolve(context.Background(), srv.URL+"/tifrs.xsd")
	require.NoError(t, err)
	path2, err := resolver.Resolve(context.Background(), srv.URL+"/tifrs.xsd")
	require.NoError(t, err)

	assert.Equal(t, path1, path2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "<xsd/>", string(data))
}

func TestResolver_ConcurrentCallersShareOneFetch(t *testing.T) {
	var hits int32
	resolver, srv := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<xsd/>"))
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := resolver.Resolve(context.Background(), srv.URL+"/shared.xsd")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestResolver_ResolveLinkbases_DegradesOnFailure(t *testing.T) {
	resolver, srv := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	set := resolver.ResolveLinkbases(context.Background(), srv.URL+"/missing_cal.xml", "", "")
	assert.True(t, set.BestEffort)
	assert.Nil(t, set.Calculation)
}
