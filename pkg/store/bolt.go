package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/logger"
)

const (
	ledgerBucket = "ledger"
	documentKey  = "document"

	// corruptKey preserves an undecodable document so starting fresh
	// does not destroy the bytes a user might still recover by hand.
	corruptKey = "document.corrupt"
)

// boltStore persists the ledger document in a bbolt database.
type boltStore struct {
	db     *bolt.DB
	log    logger.Logger
	mu     sync.Mutex
	closed bool
}

// NewBoltStore opens (creating if necessary) a bbolt-backed store at path.
//
// Parameters:
//   - path: database file path; "~" is expanded to the home directory
//   - log: logger for store operations (may be nil)
//
// Returns an error if the database cannot be opened.
func NewBoltStore(path string, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Noop()
	}

	expanded, err := expandHome(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(expanded, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Creating the bucket is the only write on open. Skip it when the
	// bucket already exists so reopening leaves the file untouched; the
	// watch command observes the file and must not see its own opens.
	var initialized bool
	err = db.View(func(tx *bolt.Tx) error {
		initialized = tx.Bucket([]byte(ledgerBucket)) != nil
		return nil
	})
	if err == nil && !initialized {
		err = db.Update(func(tx *bolt.Tx) error {
			_, createErr := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
			return createErr
		})
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Debug("opened ledger database", "path", expanded)

	return &boltStore{db: db, log: log}, nil
}

// Load implements Store.Load.
func (s *boltStore) Load(ctx context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket([]byte(ledgerBucket)).Get([]byte(documentKey)); data != nil {
			raw = make([]byte, len(data))
			copy(raw, data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc := domain.NewDocument()

	if raw == nil {
		// First run: persist the fresh document so later loads see it.
		if err := s.write(doc); err != nil {
			return nil, err
		}
		s.log.Info("created new ledger document")
		return doc, nil
	}

	// Decode over a default document so fields absent from older
	// versions keep their defaults. A document that does not decode at
	// all is set aside and replaced with a fresh default; loading never
	// fails on bad content, only on I/O.
	if err := json.Unmarshal(raw, doc); err != nil {
		s.log.Error("stored document is corrupt, starting fresh", "error", err)

		quarantineErr := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(ledgerBucket)).Put([]byte(corruptKey), raw)
		})
		if quarantineErr != nil {
			return nil, fmt.Errorf("failed to preserve corrupt document: %w", quarantineErr)
		}

		doc = domain.NewDocument()
		if err := s.write(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	if normalizeDocument(doc) {
		if err := s.write(doc); err != nil {
			return nil, err
		}
		s.log.Debug("repaired ledger document on load")
	}

	return doc, nil
}

// Save implements Store.Save.
func (s *boltStore) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.write(doc)
}

// write replaces the stored document in a single transaction.
func (s *boltStore) write(doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ledgerBucket)).Put([]byte(documentKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// Close implements Store.Close.
func (s *boltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	return s.db.Close()
}

// expandHome expands a leading "~" in path to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
