package asset

import (
	"context"
	log "log/slog"
	"sync"
)

type memoryObject struct {
	data     []byte
	mimeType string
}

// MemoryStore 进程内对象存储，用于本地开发与测试
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	locator Locator
}

func NewMemoryStore(locator Locator) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		locator: locator,
	}
}

func (s *MemoryStore) Upload(ctx context.Context, req UploadRequest) (*Asset, error) {
	kind := ClassifyKind(req.MimeType)
	key := NewObjectKey(kind, req.OwnerID, req.OriginalName)

	if err := ctx.Err(); err != nil {
		return nil, &OpError{Op: OpUpload, Key: key, Err: err}
	}
	if len(req.Data) == 0 {
		return nil, &OpError{Op: OpUpload, Key: key, Err: ErrEmptyFile}
	}

	data := make([]byte, len(req.Data))
	copy(data, req.Data)

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, mimeType: req.MimeType}
	s.mu.Unlock()

	return &Asset{
		ID:       key,
		URL:      s.locator.URL(key),
		ByteSize: int64(len(data)),
		Kind:     kind,
		MimeType: req.MimeType,
	}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, assetID string) error {
	if err := ctx.Err(); err != nil {
		return &OpError{Op: OpDelete, Key: assetID, Err: err}
	}

	s.mu.Lock()
	_, ok := s.objects[assetID]
	delete(s.objects, assetID)
	s.mu.Unlock()

	if !ok {
		log.InfoContext(ctx, "asset already absent, delete treated as success", "asset_id", assetID)
	}
	return nil
}

func (s *MemoryStore) ExtractAssetID(url string) (string, bool) {
	return s.locator.ExtractAssetID(url)
}

// Has 判断对象是否存在
func (s *MemoryStore) Has(assetID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[assetID]
	return ok
}

// Len 当前对象数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
