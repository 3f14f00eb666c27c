package memorystore

import (
	"errors"
	"sync"

	"ctrmdash/internal/domain"
)

var ErrTradeNotFound = errors.New("trade not found")

// TradeStore is the in-memory trade list. Trades are appended or updated in
// place, never removed. Readers always receive copies.
type TradeStore struct {
	mu     sync.RWMutex
	trades []domain.Trade
	nextID int
}

// NewTradeStore loads seed trades. New ids continue after the highest seed id.
func NewTradeStore(seed []domain.Trade) *TradeStore {
	s := &TradeStore{
		trades: make([]domain.Trade, len(seed)),
		nextID: 1,
	}
	copy(s.trades, seed)
	for _, t := range seed {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// Append assigns the next id, stores the trade built by build and returns it.
func (s *TradeStore) Append(build func(id int) domain.Trade) domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := build(s.nextID)
	t.ID = s.nextID
	s.nextID++
	s.trades = append(s.trades, t)
	return t
}

// Update applies fn to the stored trade with the given id. fn reports whether it
// changed anything. The updated copy is returned.
func (s *TradeStore) Update(id int, fn func(*domain.Trade) bool) (domain.Trade, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trades {
		if s.trades[i].ID == id {
			changed := fn(&s.trades[i])
			return s.trades[i], changed, nil
		}
	}
	return domain.Trade{}, false, ErrTradeNotFound
}

func (s *TradeStore) Get(id int) (domain.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trades {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Trade{}, false
}

// All returns a copy of every trade in insertion order.
func (s *TradeStore) All() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

func (s *TradeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trades)
}
