// ABOUTME: Badger-backed landing zone for raw provider payloads.
// ABOUTME: Keys are owm/<city>/<dt>; Replay re-processes stored payloads.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

const archivePrefix = "owm/"

// Archive stores every fetched payload before transformation so a run
// can be re-processed without re-fetching.
type Archive struct {
	db *badger.DB
}

// OpenArchive opens or creates the archive at dir.
func OpenArchive(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Store archives one payload. Re-archiving the same city and instant
// overwrites the previous copy; payloads are immutable provider facts,
// so the bytes are identical either way.
func (a *Archive) Store(w *owm.CurrentWeather) error {
	key := archiveKey(w)
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

// Replay invokes fn for every archived payload in key order. The context
// is checked between payloads so long replays can be cancelled.
func (a *Archive) Replay(ctx context.Context, fn func(*owm.CurrentWeather) error) error {
	return a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(archivePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var w owm.CurrentWeather
				if err := json.Unmarshal(val, &w); err != nil {
					return fmt.Errorf("decode archived payload %s: %w", item.Key(), err)
				}
				return fn(&w)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of archived payloads.
func (a *Archive) Count() (int, error) {
	count := 0
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(archivePrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count archive: %w", err)
	}
	return count, nil
}

// Close closes the underlying store.
func (a *Archive) Close() error {
	return a.db.Close()
}

// archiveKey builds owm/<city>/<dt>. The city token folds name and
// country so same-named cities in different countries never collide.
func archiveKey(w *owm.CurrentWeather) string {
	city := strings.ToLower(strings.ReplaceAll(w.Name, " ", "-"))
	if w.Sys.Country != "" {
		city += "-" + strings.ToLower(w.Sys.Country)
	}
	return fmt.Sprintf("%s%s/%d", archivePrefix, city, w.Dt)
}
