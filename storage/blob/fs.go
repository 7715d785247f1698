// Package blob holds the document byte stores. The core only ever sees the
// admission.BlobStore contract and the URIs handed back from Put.
package blob

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

const fsScheme = "file"

// FSStore writes blobs under a root directory and serves file:// URIs.
type FSStore struct {
	root string
}

var _ admission.BlobStore = (*FSStore)(nil)

func NewFSStore(conf *core.Config) *FSStore {
	return &FSStore{root: conf.Admission.MediaRoot}
}

func (s *FSStore) Put(content io.Reader, suggestedKey string) (string, error) {
	key := filepath.FromSlash(strings.TrimLeft(suggestedKey, "/"))
	path := filepath.Join(s.root, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", core.NewAdapterError("blob", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", core.NewAdapterError("blob", err)
	}
	defer f.Close()

	if _, err = io.Copy(f, content); err != nil {
		_ = os.Remove(path)
		return "", core.NewAdapterError("blob", err)
	}

	u := url.URL{Scheme: fsScheme, Path: filepath.ToSlash(path)}
	return u.String(), nil
}

func (s *FSStore) Delete(uri string) error {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != fsScheme {
		return errors.Errorf("not a %s URI: %s", fsScheme, uri)
	}
	if err = os.Remove(filepath.FromSlash(u.Path)); err != nil && !os.IsNotExist(err) {
		return core.NewAdapterError("blob", err)
	}
	return nil
}
