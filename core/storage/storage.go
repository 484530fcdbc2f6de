package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// StateBackend abstracts the persistent key-value store for node state.
type StateBackend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = leveldb.ErrNotFound

type Storage struct {
	db *leveldb.DB
}

func NewStorage(path string) (*Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Get retrieves a value by key from LevelDB.
func (s *Storage) Get(key string) ([]byte, error) {
	return s.db.Get([]byte(key), nil)
}

// Put stores a key-value pair in LevelDB.
func (s *Storage) Put(key string, value []byte) error {
	return s.db.Put([]byte(key), value, nil)
}

// Has reports whether a key exists without reading its value.
func (s *Storage) Has(key string) (bool, error) {
	return s.db.Has([]byte(key), nil)
}

func (s *Storage) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

// WriteBatch commits a group of writes atomically. Every entry point
// mutation goes through one batch so state is never half-applied.
func (s *Storage) WriteBatch(batch *leveldb.Batch) error {
	return s.db.Write(batch, nil)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Iterator() iterator.Iterator {
	return s.db.NewIterator(nil, nil)
}

// PrefixIterator iterates all keys under one namespace prefix, in key order.
func (s *Storage) PrefixIterator(prefix string) iterator.Iterator {
	return s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
}

// DB exposes the underlying LevelDB instance
func (s *Storage) DB() *leveldb.DB {
	return s.db
}
