package mediastore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryStore keeps objects in process memory. It backs local development
// and is the object store used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject

	// Fail, when set, is consulted before every mutating call.
	Fail func(op, key string) error
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) check(op, key string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, key)
}

func (s *MemoryStore) Upload(_ context.Context, key string, body io.Reader, contentType string) (Object, error) {
	if err := s.check("upload", key); err != nil {
		return Object{}, err
	}
	data, err := readAll(body)
	if err != nil {
		return Object{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	return Object{Key: key, URL: s.URL(key)}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if err := s.check("delete", key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, keys []string) error {
	for _, k := range keys {
		if err := s.check("delete_many", k); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// List pages through keys under prefix in lexical order. The cursor is the
// offset of the next page.
func (s *MemoryStore) List(_ context.Context, prefix string, cursor string, limit int) (Page, error) {
	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return Page{}, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
		}
		start = n
	}
	if start > len(keys) {
		start = len(keys)
	}
	if limit <= 0 {
		limit = len(keys)
	}
	end := start + limit
	if end > len(keys) {
		end = len(keys)
	}

	page := Page{Keys: keys[start:end]}
	if end < len(keys) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *MemoryStore) DeleteFolder(_ context.Context, prefix string) error {
	if err := s.check("delete_folder", prefix); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, folderMarker(prefix))
	return nil
}

func (s *MemoryStore) URL(key string) string {
	return joinURL(s.baseURL, key)
}

// Keys returns every stored key under prefix.
func (s *MemoryStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Get returns a copy of the object's bytes and its content type.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}
