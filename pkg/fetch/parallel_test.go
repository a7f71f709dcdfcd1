package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allthingstrust/truststack/pkg/ratelimit"
	"github.com/allthingstrust/truststack/pkg/robots"
)

func TestFetchAll_PreservesInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Randomise completion order.
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond) //nolint:gosec
		_, _ = w.Write([]byte(`<html><body><article>` +
			fmt.Sprintf("page %s content padding padding padding padding padding padding padding padding padding", r.URL.Path) +
			`</article></body></html>`))
	}))
	defer srv.Close()

	f := New(Config{}, ratelimit.New(time.Millisecond), robots.New(ratelimit.New(time.Millisecond)), nil)

	var urls []string
	for i := 0; i < 8; i++ {
		urls = append(urls, fmt.Sprintf("%s/%d", srv.URL, i))
	}

	results := f.FetchAll(context.Background(), urls, 5)
	require.Len(t, results, 8)
	for i, r := range results {
		require.NotNil(t, r)
		require.Contains(t, r.Body, fmt.Sprintf("/%d", i))
	}
}

func TestClampWorkers(t *testing.T) {
	require.Equal(t, DefaultParallelWorkers, clampWorkers(0, 100))
	require.Equal(t, MaxParallelWorkers, clampWorkers(50, 100))
	require.Equal(t, 3, clampWorkers(10, 3))
}
