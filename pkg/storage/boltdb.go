package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"
)

// DefaultFile is the state database created in the manager directory
const DefaultFile = "anmgr.db"

var bucketSettings = []byte("settings")

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// DefaultPath returns the state database location inside managerDir
func DefaultPath(managerDir string) string {
	return filepath.Join(managerDir, DefaultFile)
}

// NewBoltStore opens or creates the BoltDB file at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSettings); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketSettings, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Manager names are case-insensitive, like parameter names
func snapshotKey(manager string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(manager)))
}

func (s *BoltStore) SaveSnapshot(snap *Snapshot) error {
	if strings.TrimSpace(snap.Manager) == "" {
		return fmt.Errorf("snapshot has no manager name")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		return b.Put(snapshotKey(snap.Manager), data)
	})
}

func (s *BoltStore) LatestSnapshot(manager string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		data := b.Get(snapshotKey(manager))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, manager)
		}
		return json.Unmarshal(data, &snap)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *BoltStore) ListManagers() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		return b.ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			names = append(names, snap.Manager)
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}
