package claim

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	claimBucketName = "claims"
	userBucketName  = "users"
)

// ErrNotFound is returned when a claim or user does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for database operations
type DB interface {
	// SaveClaim saves a claim to the database
	SaveClaim(claim *ExpenseClaim) error

	// GetClaim retrieves a claim by ID
	GetClaim(id string) (*ExpenseClaim, error)

	// ListClaims returns all claims
	ListClaims() ([]*ExpenseClaim, error)

	// SaveUser saves a user to the database
	SaveUser(user *User) error

	// GetUser retrieves a user by ID
	GetUser(id string) (*User, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(claimBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(userBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveClaim saves a claim to the database
func (b *BoltDB) SaveClaim(claim *ExpenseClaim) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucketName))
		data, err := json.Marshal(claim)
		if err != nil {
			return fmt.Errorf("marshaling claim: %w", err)
		}
		return bucket.Put([]byte(claim.ID), data)
	})
}

// GetClaim retrieves a claim by ID
func (b *BoltDB) GetClaim(id string) (*ExpenseClaim, error) {
	var claim *ExpenseClaim
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("claim %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ListClaims returns all claims
func (b *BoltDB) ListClaims() ([]*ExpenseClaim, error) {
	claims := make([]*ExpenseClaim, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var claim ExpenseClaim
			if err := json.Unmarshal(v, &claim); err != nil {
				return fmt.Errorf("unmarshaling claim: %w", err)
			}
			claims = append(claims, &claim)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SaveUser saves a user to the database
func (b *BoltDB) SaveUser(user *User) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshaling user: %w", err)
		}
		return bucket.Put([]byte(user.ID), data)
	})
}

// GetUser retrieves a user by ID
func (b *BoltDB) GetUser(id string) (*User, error) {
	var user *User
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(userBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
