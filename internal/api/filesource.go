package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"

	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
)

// DefaultReloadDelay is how long FileSource waits for writes to settle
// before reloading.
const DefaultReloadDelay = 100 * time.Millisecond

// FileSource serves the catalog from a JSON file in the same shape as
// GET /product.
type FileSource struct {
	path  string
	cdn   string
	delay time.Duration
	log   *logging.Logger
}

// NewFileSource creates a catalog backed by path. cdn is prepended to image
// paths as the HTTP client does.
func NewFileSource(path, cdn string, log *logging.Logger) *FileSource {
	if log == nil {
		log = logging.Default()
	}
	return &FileSource{
		path:  path,
		cdn:   cdn,
		delay: DefaultReloadDelay,
		log:   log.WithComponent("catalog").WithField("path", path),
	}
}

// SetReloadDelay overrides DefaultReloadDelay.
func (f *FileSource) SetReloadDelay(d time.Duration) {
	f.delay = d
}

// Path returns the catalog file path.
func (f *FileSource) Path() string {
	return f.path
}

// GetCardList reads the catalog file.
func (f *FileSource) GetCardList(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	products, err := decodeProducts(data, f.cdn)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", f.path, err)
	}
	return products, nil
}

// GetCardItem finds a product in the catalog file.
func (f *FileSource) GetCardItem(ctx context.Context, id string) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return model.Product{}, fmt.Errorf("read catalog: %w", err)
	}
	items := gjson.ParseBytes(data)
	if items.IsObject() {
		items = items.Get("items")
	}
	for _, r := range items.Array() {
		if r.Get("id").String() == id {
			return decodeProduct(r, f.cdn)
		}
	}
	return model.Product{}, &StatusError{
		Method:     http.MethodGet,
		Path:       "/product/" + id,
		StatusCode: http.StatusNotFound,
		Message:    "NotFound",
	}
}

// Watch calls onChange with the freshly read catalog every time the file
// changes, until ctx is done. Bursts of writes are coalesced. Read errors
// are logged and the previous catalog stays in effect.
func (f *FileSource) Watch(ctx context.Context, onChange func([]model.Product)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	// Editors replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.delay)
			} else {
				timer.Reset(f.delay)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("watch error: %v", err)

		case <-fire:
			fire = nil
			products, err := f.GetCardList(ctx)
			if err != nil {
				f.log.Warn("reload failed: %v", err)
				continue
			}
			f.log.Info("catalog reloaded, %d products", len(products))
			onChange(products)
		}
	}
}
