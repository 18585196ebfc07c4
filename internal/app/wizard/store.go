package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/statelink/statelink-backend/pkg/logger"
)

var ErrSessionNotFound = errors.New("wizard session not found")

// Store persists wizard state and the one-time payment receipt per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, state *State) error
	SavePaymentInfo(ctx context.Context, sessionID string, info *PaymentInfo) error
	// TakePaymentInfo returns the receipt and removes it.
	TakePaymentInfo(ctx context.Context, sessionID string) (*PaymentInfo, error)
}

func stateKey(sessionID string) string {
	return fmt.Sprintf("wizard:%s", sessionID)
}

func paymentInfoKey(sessionID string) string {
	return fmt.Sprintf("wizard:%s:payment_info", sessionID)
}

// RedisStore keeps each record as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.client.Get(ctx, stateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		logger.Error("Failed to load wizard state", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, fmt.Errorf("load wizard state: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode wizard state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode wizard state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(state.SessionID), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to save wizard state", err, map[string]interface{}{
			"session_id": state.SessionID,
			"step":       state.Step,
		})
		return fmt.Errorf("save wizard state: %w", err)
	}
	return nil
}

func (s *RedisStore) SavePaymentInfo(ctx context.Context, sessionID string, info *PaymentInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode payment info: %w", err)
	}
	return s.client.Set(ctx, paymentInfoKey(sessionID), raw, s.ttl).Err()
}

// TakePaymentInfo uses GETDEL so two concurrent confirmations cannot both read it.
func (s *RedisStore) TakePaymentInfo(ctx context.Context, sessionID string) (*PaymentInfo, error) {
	raw, err := s.client.GetDel(ctx, paymentInfoKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take payment info: %w", err)
	}

	var info PaymentInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode payment info: %w", err)
	}
	return &info, nil
}

// MemoryStore is a process-local Store for tests and single-node development.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	states   map[string]memoryEntry
	receipts map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		states:   make(map[string]memoryEntry),
		receipts: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*State, error) {
	raw, ok := s.get(s.states, sessionID, false)
	if !ok {
		return nil, ErrSessionNotFound
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryStore) Save(_ context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.put(s.states, state.SessionID, raw)
	return nil
}

func (s *MemoryStore) SavePaymentInfo(_ context.Context, sessionID string, info *PaymentInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	s.put(s.receipts, sessionID, raw)
	return nil
}

func (s *MemoryStore) TakePaymentInfo(_ context.Context, sessionID string) (*PaymentInfo, error) {
	raw, ok := s.get(s.receipts, sessionID, true)
	if !ok {
		return nil, ErrSessionNotFound
	}
	var info PaymentInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *MemoryStore) put(m map[string]memoryEntry, key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m[key] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
}

func (s *MemoryStore) get(m map[string]memoryEntry, key string, remove bool) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := m[key]
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		delete(m, key)
		return nil, false
	}
	if remove {
		delete(m, key)
	}
	return entry.raw, true
}
