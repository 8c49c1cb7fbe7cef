// Package kvstore is the durable key/value storage which memegen uses instead
// of a process-wide singleton: the catalog cache, the theme and the recent
// memes all get a Store injected.
package kvstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

type Store interface {
	// Get returns the value for the key, and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore keeps all the values in a single yaml file; every change is
// written out right away. It's safe for concurrent use.
type FileStore struct {
	params FileStoreParams

	mtx  sync.Mutex
	data map[string]string
}

type FileStoreParams struct {
	Filename string
}

// NewFileStore loads the file if it exists; a missing file means an empty
// store.
func NewFileStore(params FileStoreParams) (*FileStore, error) {
	fs := &FileStore{
		params: params,
		data:   map[string]string{},
	}

	data, err := ioutil.ReadFile(params.Filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}

		return nil, errors.Annotatef(err, "reading store file %s", params.Filename)
	}

	if err := yaml.Unmarshal(data, &fs.data); err != nil {
		return nil, errors.Annotatef(err, "unmarshaling yaml from %s", params.Filename)
	}

	if fs.data == nil {
		fs.data = map[string]string{}
	}

	return fs, nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mtx.Lock()
	defer fs.mtx.Unlock()

	v, ok := fs.data[key]
	return v, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mtx.Lock()
	defer fs.mtx.Unlock()

	fs.data[key] = value

	return errors.Trace(fs.writeLocked())
}

func (fs *FileStore) Delete(key string) error {
	fs.mtx.Lock()
	defer fs.mtx.Unlock()

	if _, ok := fs.data[key]; !ok {
		return nil
	}

	delete(fs.data, key)

	return errors.Trace(fs.writeLocked())
}

// Keys returns all the keys, sorted.
func (fs *FileStore) Keys() []string {
	fs.mtx.Lock()
	defer fs.mtx.Unlock()

	keys := make([]string, 0, len(fs.data))
	for k := range fs.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func (fs *FileStore) writeLocked() error {
	data, err := yaml.Marshal(fs.data)
	if err != nil {
		return errors.Annotatef(err, "marshaling store")
	}

	dir := filepath.Dir(fs.params.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Annotatef(err, "creating dir %s", dir)
	}

	// Write to a temp file first and rename, so that a crash in the middle
	// never leaves a truncated store behind.
	tmp, err := ioutil.TempFile(dir, ".memegen-store-*")
	if err != nil {
		return errors.Annotatef(err, "creating temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "writing %s", tmp.Name())
	}

	if err := tmp.Close(); err != nil {
		return errors.Annotatef(err, "closing %s", tmp.Name())
	}

	if err := os.Rename(tmp.Name(), fs.params.Filename); err != nil {
		return errors.Annotatef(err, "renaming to %s", fs.params.Filename)
	}

	return nil
}

// MemStore is a Store which only lives in RAM.
type MemStore struct {
	mtx  sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		data: map[string]string{},
	}
}

func (ms *MemStore) Get(key string) (string, bool, error) {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	v, ok := ms.data[key]
	return v, ok, nil
}

func (ms *MemStore) Set(key, value string) error {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	ms.data[key] = value
	return nil
}

func (ms *MemStore) Delete(key string) error {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	delete(ms.data, key)
	return nil
}
