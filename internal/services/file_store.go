// Package services holds the application services between the HTTP
// transport and the analysis pipeline: file intake and storage, and
// analysis run execution.
package services

import (
	"sort"
	"sync"
	"time"

	"erpinsight/internal/tabular"
	"erpinsight/pkg/contracts/domain"
)

// StoredFile is an uploaded table held in memory between upload and
// analysis.
type StoredFile struct {
	ID         string
	Name       string
	Table      *tabular.Table
	Match      domain.SchemaMatch
	UploadedAt time.Time
}

// FileStore is an in-memory upload store. Files never touch disk; a
// restart clears the store, which also bounds how long uploaded
// business data lives in the process.
type FileStore struct {
	mu       sync.RWMutex
	files    map[string]*StoredFile
	maxFiles int
}

func NewFileStore(maxFiles int) *FileStore {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &FileStore{
		files:    make(map[string]*StoredFile),
		maxFiles: maxFiles,
	}
}

// Put stores a file, evicting the oldest upload when at capacity.
func (s *FileStore) Put(f *StoredFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.files) >= s.maxFiles {
		var oldest *StoredFile
		for _, existing := range s.files {
			if oldest == nil || existing.UploadedAt.Before(oldest.UploadedAt) {
				oldest = existing
			}
		}
		if oldest != nil {
			delete(s.files, oldest.ID)
		}
	}
	s.files[f.ID] = f
}

// Get returns the stored file, or nil.
func (s *FileStore) Get(id string) *StoredFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[id]
}

// List returns all stored files ordered by upload time.
func (s *FileStore) List() []*StoredFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*StoredFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// Delete removes a stored file.
func (s *FileStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return false
	}
	delete(s.files, id)
	return true
}

// Len reports the number of stored files.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
