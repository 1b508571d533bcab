package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"
)

var (
	ordersBucket = []byte("orders")
	keysBucket   = []byte("idempotency")
)

// ErrOrderNotFound is returned by Get for an unknown order id.
var ErrOrderNotFound = errors.New("order not found")

// OrderRecord is an accepted order as persisted by the store.
type OrderRecord struct {
	ID        string          `json:"id"`
	Payment   string          `json:"payment"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Total     decimal.Decimal `json:"total"`
	Items     []string        `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderStore keeps accepted orders in a bbolt file.
type OrderStore struct {
	db *bolt.DB
}

// OpenStore opens or creates the order database at path.
func OpenStore(path string) (*OrderStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open order store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{ordersBucket, keysBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init order store: %w", err)
	}
	return &OrderStore{db: db}, nil
}

// Put stores rec. When key is not empty and was seen before, the order
// stored under that key is returned instead and replayed is true.
func (s *OrderStore) Put(key string, rec OrderRecord) (stored OrderRecord, replayed bool, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		orders := tx.Bucket(ordersBucket)
		keys := tx.Bucket(keysBucket)

		if key != "" {
			if id := keys.Get([]byte(key)); id != nil {
				prev, err := decodeRecord(orders.Get(id))
				if err != nil {
					return err
				}
				stored, replayed = prev, true
				return nil
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := orders.Put([]byte(rec.ID), data); err != nil {
			return err
		}
		if key != "" {
			if err := keys.Put([]byte(key), []byte(rec.ID)); err != nil {
				return err
			}
		}
		stored = rec
		return nil
	})
	if err != nil {
		return OrderRecord{}, false, fmt.Errorf("put order %s: %w", rec.ID, err)
	}
	return stored, replayed, nil
}

// Get returns the order with the given id.
func (s *OrderStore) Get(id string) (OrderRecord, error) {
	var rec OrderRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(ordersBucket).Get([]byte(id))
		if data == nil {
			return ErrOrderNotFound
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	if err != nil {
		return OrderRecord{}, err
	}
	return rec, nil
}

// List returns every stored order, oldest first.
func (s *OrderStore) List() ([]OrderRecord, error) {
	var recs []OrderRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ordersBucket).ForEach(func(_, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

// Close closes the database file.
func (s *OrderStore) Close() error {
	return s.db.Close()
}

func decodeRecord(data []byte) (OrderRecord, error) {
	if data == nil {
		return OrderRecord{}, ErrOrderNotFound
	}
	var rec OrderRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return OrderRecord{}, fmt.Errorf("decode order: %w", err)
	}
	return rec, nil
}
