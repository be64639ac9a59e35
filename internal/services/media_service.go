package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/pkg/mediastore"
	"memoria/pkg/utils"
)

const (
	purgeListPageSize = 500
	purgeBatchSize    = 100
)

// FileUpload is one submitted file. Open is called at most once, only when
// the file is actually stored.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// MediaLifecycle owns every object stored for a memorial. Cleanup never
// fails the caller: errors are logged and swallowed.
type MediaLifecycle interface {
	Store(ctx context.Context, memorialID uuid.UUID, kind db_models.AssetKind, file FileUpload) (mediastore.Object, error)
	StoreBytes(ctx context.Context, key string, data []byte, contentType string) (mediastore.Object, error)
	ReplaceObject(ctx context.Context, oldKey, newKey string)
	PurgeObject(ctx context.Context, key string)
	PurgeMemorial(ctx context.Context, memorial *db_models.Memorial)
	KeyFromURL(rawURL string) string
}

type mediaLifecycle struct {
	store      mediastore.Store
	baseURL    string
	batchDelay time.Duration
	log        *zap.Logger
	sleep      func(ctx context.Context, d time.Duration)
}

func NewMediaLifecycle(store mediastore.Store, batchDelay time.Duration, log *zap.Logger) MediaLifecycle {
	return &mediaLifecycle{
		store:      store,
		baseURL:    strings.TrimSuffix(store.URL(""), "/"),
		batchDelay: batchDelay,
		log:        log,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// objectKey builds memorials/{id}/{kind}/{uuid}{ext}.
func objectKey(memorialID uuid.UUID, kind db_models.AssetKind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", db_models.AssetPrefix(memorialID, kind), uuid.NewString(), ext)
}

func (m *mediaLifecycle) Store(ctx context.Context, memorialID uuid.UUID, kind db_models.AssetKind, file FileUpload) (mediastore.Object, error) {
	body, err := file.Open()
	if err != nil {
		return mediastore.Object{}, fmt.Errorf("%w: open upload: %v", utils.ErrInvalidInput, err)
	}
	defer body.Close()

	key := objectKey(memorialID, kind, file.Filename)
	obj, err := m.store.Upload(ctx, key, body, file.ContentType)
	if err != nil {
		m.log.Error("media upload failed",
			zap.String("memorial_id", memorialID.String()),
			zap.String("key", key),
			zap.Error(err))
		return mediastore.Object{}, fmt.Errorf("%w: upload: %v", utils.ErrExternalService, err)
	}
	return obj, nil
}

func (m *mediaLifecycle) StoreBytes(ctx context.Context, key string, data []byte, contentType string) (mediastore.Object, error) {
	obj, err := m.store.Upload(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return mediastore.Object{}, fmt.Errorf("%w: upload: %v", utils.ErrExternalService, err)
	}
	return obj, nil
}

// ReplaceObject drops the previous object once a new one has been stored.
// Keys are compared by identity, so re-saving the same reference is a no-op.
func (m *mediaLifecycle) ReplaceObject(ctx context.Context, oldKey, newKey string) {
	if oldKey == "" || oldKey == newKey {
		return
	}
	m.PurgeObject(ctx, oldKey)
}

func (m *mediaLifecycle) PurgeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := m.store.Delete(ctx, key); err != nil {
		m.log.Warn("media purge failed", zap.String("key", key), zap.Error(err))
	}
}

// PurgeMemorial removes the memorial's known objects, then sweeps the whole
// namespace in batches, then the folder marker.
func (m *mediaLifecycle) PurgeMemorial(ctx context.Context, memorial *db_models.Memorial) {
	namespace := memorial.Namespace()
	log := m.log.With(zap.String("memorial_id", memorial.ID.String()), zap.String("namespace", namespace))
	log.Info("purging memorial media")

	for _, key := range []string{memorial.QRCodeKey, memorial.ProfileKey, memorial.AudioKey} {
		if key == "" {
			continue
		}
		if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, mediastore.ErrObjectNotFound) {
			log.Warn("media purge failed", zap.String("key", key), zap.Error(err))
		}
	}

	keys := m.listAll(ctx, namespace+"/", log)
	if len(keys) > 0 {
		log.Info("deleting namespace objects", zap.Int("count", len(keys)))
	}
	for start := 0; start < len(keys); start += purgeBatchSize {
		end := start + purgeBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := m.store.DeleteMany(ctx, keys[start:end]); err != nil {
			log.Error("media batch delete failed", zap.Int("batch", start/purgeBatchSize+1), zap.Error(err))
		}
		if end < len(keys) {
			m.sleep(ctx, m.batchDelay)
		}
	}

	if err := m.store.DeleteFolder(ctx, namespace); err != nil {
		log.Warn("folder delete failed", zap.Error(err))
	}
	log.Info("memorial media purge finished")
}

// listAll collects every key before anything is deleted so deletions cannot
// disturb pagination.
func (m *mediaLifecycle) listAll(ctx context.Context, prefix string, log *zap.Logger) []string {
	var keys []string
	cursor := ""
	for {
		page, err := m.store.List(ctx, prefix, cursor, purgeListPageSize)
		if err != nil {
			log.Error("media listing failed", zap.Error(err))
			return keys
		}
		keys = append(keys, page.Keys...)
		if page.NextCursor == "" {
			return keys
		}
		cursor = page.NextCursor
	}
}

func (m *mediaLifecycle) KeyFromURL(rawURL string) string {
	return mediastore.KeyFromURL(m.baseURL, rawURL)
}
