package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"crusty-text/internal/model"
	"crusty-text/internal/wordfreq"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "queue:analyze"
	recentKey = "list:recent"
)

var errNoBadger = errors.New("badgerdb is not initialized")

// HybridStore keeps document metadata, word counts and the job queue in
// Redis and document bodies in Badger.
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
}

// NewHybridStore initializes databases.
// Pass badgerPath="" to run in "Redis-Only" mode (for CLI tools).
func NewHybridStore(redisAddr string, badgerPath string) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func docKey(id uuid.UUID) string   { return fmt.Sprintf("doc:%s", id) }
func wordsKey(id uuid.UUID) string { return fmt.Sprintf("words:%s", id) }
func bodyKey(name string) []byte   { return []byte("body:" + name) }

// Save writes metadata to Redis. Pending documents are also queued for
// analysis and pushed onto the recent list.
func (s *HybridStore) Save(ctx context.Context, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, docKey(doc.ID), data, 0)

	if doc.Status == model.StatusPending {
		pipe.LPush(ctx, queueKey, doc.ID.String())
		pipe.LRem(ctx, recentKey, 0, doc.ID.String())
		pipe.LPush(ctx, recentKey, doc.ID.String())
		pipe.LTrim(ctx, recentKey, 0, 49) // Keep only last 50 items
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads document metadata from Redis.
func (s *HybridStore) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	val, err := s.rdb.Get(ctx, docKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var doc model.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List fetches the most recent documents from Redis
func (s *HybridStore) List(ctx context.Context, limit int) ([]model.Document, error) {
	ids, err := s.rdb.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	for _, idStr := range ids {
		val, err := s.rdb.Get(ctx, "doc:"+idStr).Bytes()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, err
		}

		var d model.Document
		if err := json.Unmarshal(val, &d); err == nil {
			docs = append(docs, d)
		}
	}

	return docs, nil
}

// UpdateStatus is a helper to just flip the status flag in Redis
func (s *HybridStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	doc.Status = status
	return s.Save(ctx, doc)
}

// SaveWords replaces the stored frequency table of a document.
func (s *HybridStore) SaveWords(ctx context.Context, id uuid.UUID, words wordfreq.Table) error {
	key := wordsKey(id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(words) > 0 {
		fields := make(map[string]interface{}, len(words))
		for w, n := range words {
			fields[w] = n
		}
		pipe.HSet(ctx, key, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Words loads the frequency table of a document. A document that was never
// analyzed has an empty table.
func (s *HybridStore) Words(ctx context.Context, id uuid.UUID) (wordfreq.Table, error) {
	vals, err := s.rdb.HGetAll(ctx, wordsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	words := make(wordfreq.Table, len(vals))
	for w, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt count for %q: %w", w, err)
		}
		words[w] = n
	}
	return words, nil
}

// PopQueue waits for a job in the Redis queue (Blocking)
func (s *HybridStore) PopQueue(ctx context.Context) (uuid.UUID, error) {
	// 0 means wait forever until an item arrives
	result, err := s.rdb.BRPop(ctx, 0, queueKey).Result()
	if err != nil {
		return uuid.Nil, err
	}

	idStr := result[1]
	return uuid.Parse(idStr)
}

// PutBody stores (or replaces) the text of a named document in Badger.
func (s *HybridStore) PutBody(name string, body []byte) error {
	if s.db == nil {
		return fmt.Errorf("cannot save body: %w", errNoBadger)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bodyKey(name), body)
	})
}

// Open returns the body of a named document. A missing body is reported
// as fs.ErrNotExist.
func (s *HybridStore) Open(name string) (io.ReadCloser, error) {
	if s.db == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errNoBadger}
	}

	var body []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bodyKey(name))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// Create starts a new document body. The body is written when the returned
// writer is closed. Creating a name that already exists fails with
// fs.ErrExist.
func (s *HybridStore) Create(name string) (io.WriteCloser, error) {
	if s.db == nil {
		return nil, &fs.PathError{Op: "create", Path: name, Err: errNoBadger}
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(bodyKey(name))
		return err
	})
	switch {
	case err == nil:
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return nil, &fs.PathError{Op: "create", Path: name, Err: err}
	}
	return &bodyWriter{store: s, name: name}, nil
}

type bodyWriter struct {
	store *HybridStore
	name  string
	buf   bytes.Buffer
}

func (w *bodyWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *bodyWriter) Close() error {
	return w.store.PutBody(w.name, w.buf.Bytes())
}
