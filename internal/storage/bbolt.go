package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket   = []byte("config")   // Schema version, timestamps
	HistoryBucket  = []byte("history")  // Every install, in order
	IndexBucket    = []byte("index")    // Latest install per path
	PreviousBucket = []byte("previous") // Pre-edit content of the latest install per path
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
)

// blobPrefix leads every stored blob so empty files still have a value
const blobPrefix = 0x01

var ErrNotRecorded = errors.New("no install recorded for path")

// Storage provides BBolt-based storage for the install journal
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a journal database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Initialize creates the bucket structure. It is safe to call on an
// existing journal.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, HistoryBucket, IndexBucket, PreviousBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetModified retrieves the time of the last recorded install
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// Record appends entry to the history and remembers previous as the content
// the file had before this install. previous is ignored for created files.
func (s *Storage) Record(entry *Entry, previous []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return fmt.Errorf("history bucket not found")
		}

		seq, err := history.NextSequence()
		if err != nil {
			return err
		}
		entry.Seq = seq

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := history.Put(seqKey(seq), data); err != nil {
			return err
		}
		if err := tx.Bucket(IndexBucket).Put([]byte(entry.Path), data); err != nil {
			return err
		}

		prev := tx.Bucket(PreviousBucket)
		if entry.Created {
			if err := prev.Delete([]byte(entry.Path)); err != nil {
				return err
			}
		} else if err := prev.Put([]byte(entry.Path), append([]byte{blobPrefix}, previous...)); err != nil {
			return err
		}

		modified, _ := entry.InstalledAt.MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// History returns recorded installs oldest first. An empty path returns
// every entry.
func (s *Storage) History(path string) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		history := tx.Bucket(HistoryBucket)
		if history == nil {
			return fmt.Errorf("history bucket not found")
		}
		return history.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if path == "" || entry.Path == path {
				entries = append(entries, entry)
			}
			return nil
		})
	})
	return entries, err
}

// Latest returns the most recent install recorded for path
func (s *Storage) Latest(path string) (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return fmt.Errorf("index bucket not found")
		}
		data := index.Get([]byte(path))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotRecorded, path)
		}
		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	return entry, err
}

// Previous returns the content path had before its latest install. found is
// false when the latest install created the file.
func (s *Storage) Previous(path string) (data []byte, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		prev := tx.Bucket(PreviousBucket)
		if prev == nil {
			return fmt.Errorf("previous bucket not found")
		}
		v := prev.Get([]byte(path))
		if len(v) == 0 || v[0] != blobPrefix {
			return nil
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte{}, v[1:]...)
		found = true
		return nil
	})
	return data, found, err
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
