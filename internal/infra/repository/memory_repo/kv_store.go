package memory_repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrKeyNotFound, key)
	}
	return bytes.Clone(v), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = bytes.Clone(value)
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type storedObject struct {
	contentType string
	data        []byte
}

// ImageStore 記憶體版物件儲存
type ImageStore struct {
	mu        sync.RWMutex
	urlPrefix string
	objects   map[string]storedObject
}

func NewImageStore(urlPrefix string) *ImageStore {
	return &ImageStore{urlPrefix: urlPrefix, objects: make(map[string]storedObject)}
}

func (s *ImageStore) Upload(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", path, err)
	}
	s.mu.Lock()
	s.objects[path] = storedObject{contentType: contentType, data: data}
	s.mu.Unlock()
	return s.urlPrefix + path, nil
}

func (s *ImageStore) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", repository.ErrObjectNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

func (s *ImageStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return fmt.Errorf("%w: %s", repository.ErrObjectNotFound, path)
	}
	delete(s.objects, path)
	return nil
}

// Exists 測試用
func (s *ImageStore) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok
}

func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

var (
	_ repository.IKVStore    = (*KVStore)(nil)
	_ repository.IImageStore = (*ImageStore)(nil)
)
