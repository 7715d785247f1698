package dummyblob

import (
	"io"
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core/admission"
)

// Store keeps blobs in memory; for tests.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ admission.BlobStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) Put(content io.Reader, suggestedKey string) (string, error) {
	data, err := ioutil.ReadAll(content)
	if err != nil {
		return "", err
	}
	uri := "mem://" + suggestedKey

	s.mu.Lock()
	s.blobs[uri] = data
	s.mu.Unlock()
	return uri, nil
}

func (s *Store) Delete(uri string) error {
	s.mu.Lock()
	delete(s.blobs, uri)
	s.mu.Unlock()
	return nil
}

// Get resolves a URI back to the stored bytes; test helper.
func (s *Store) Get(uri string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[uri]
	if !ok {
		return nil, errors.Errorf("no blob at %s", uri)
	}
	return data, nil
}

// Len reports how many blobs are held; test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
