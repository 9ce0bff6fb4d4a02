package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the three persisted slots.
const (
	KeyTrades    = "simulated_trades"
	KeyPortfolio = "simulated_portfolio"
	KeyHistory   = "portfolio_history"
)

// ErrNotFound is returned by Load when nothing was saved under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value persistence port used by the ledger and the snapshot history.
type Store interface {
	Save(key string, blob []byte) error
	Load(key string) ([]byte, error)
	Close() error
}

// SaveJSON encodes v and saves it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Save(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadJSON loads key into v. It reports false without error when the key is absent.
func LoadJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Load(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
