package api

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
)

func writeCatalog(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFileSource_GetCardList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, productList)

	src := NewFileSource(path, "/cdn", logging.Nop())
	products, err := src.GetCardList(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "/cdn/a.svg", products[0].Image)

	p, err := src.GetCardItem(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, "Beta", p.Title)

	_, err = src.GetCardItem(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "none.json"), "", logging.Nop())
	_, err := src.GetCardList(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeCatalog(t, path, productList)

	src := NewFileSource(path, "", logging.Nop())
	src.SetReloadDelay(10 * time.Millisecond)

	var (
		mu   sync.Mutex
		seen [][]model.Product
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func(p []model.Product) {
			mu.Lock()
			seen = append(seen, p)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeCatalog(t, path, `{"items": [{"id": "new", "price": 1}]}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && len(seen[len(seen)-1]) == 1 && seen[len(seen)-1][0].ID == "new"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
