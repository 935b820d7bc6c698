// Package state holds the per-session display state derived from the backend:
// the session itself, its peaks and categories, and the per-category chart.
package state

import (
	"sync"
	"time"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/observability"
)

// SessionState is a snapshot of one session's display data.
// Peaks and Categories are always replaced wholesale.
type SessionState struct {
	Session       domain.Session
	Peaks         []domain.Peak
	Categories    []domain.Category
	CategoryChart domain.ChartData
	RefreshedAt   time.Time
}

func (s SessionState) clone() SessionState {
	out := s
	out.Peaks = append([]domain.Peak(nil), s.Peaks...)
	out.Categories = append([]domain.Category(nil), s.Categories...)
	out.CategoryChart = domain.ChartData{
		Labels:   append([]string(nil), s.CategoryChart.Labels...),
		Datasets: make([]domain.Dataset, len(s.CategoryChart.Datasets)),
	}
	for i, ds := range s.CategoryChart.Datasets {
		out.CategoryChart.Datasets[i] = domain.Dataset{Name: ds.Name, Values: append([]float64(nil), ds.Values...)}
	}
	return out
}

// Store keeps SessionState keyed by bearer token, evicting the least recently
// used session once capacity is exceeded. Readers always receive copies.
type Store struct {
	maxEntries int
	metrics    *observability.Metrics

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key   string
	value SessionState
	prev  *entry
	next  *entry
}

// NewStore creates a Store holding at most maxEntries sessions.
func NewStore(maxEntries int, metrics *observability.Metrics) *Store {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Store{
		maxEntries: maxEntries,
		metrics:    metrics,
		entries:    make(map[string]*entry),
	}
}

// Put installs a session with empty data, replacing any existing state for its token.
func (s *Store) Put(session domain.Session) {
	st := SessionState{Session: session}
	st.CategoryChart = domain.PeaksPerCategory(nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(session.Token, st)
}

// Get returns a copy of the state for token.
func (s *Store) Get(token string) (SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return SessionState{}, false
	}
	s.moveToFront(e)
	return e.value.clone(), true
}

// ReplacePeaks swaps the session's peak list and recomputes the category chart.
func (s *Store) ReplacePeaks(token string, peaks []domain.Peak) bool {
	return s.update(token, func(st *SessionState) {
		st.Peaks = append([]domain.Peak(nil), peaks...)
	})
}

// ReplaceCategories swaps the session's category list and recomputes the category chart.
func (s *Store) ReplaceCategories(token string, categories []domain.Category) bool {
	return s.update(token, func(st *SessionState) {
		st.Categories = append([]domain.Category(nil), categories...)
	})
}

// Refresh replaces peaks and categories together so readers never see a mix.
func (s *Store) Refresh(token string, peaks []domain.Peak, categories []domain.Category) bool {
	return s.update(token, func(st *SessionState) {
		st.Peaks = append([]domain.Peak(nil), peaks...)
		st.Categories = append([]domain.Category(nil), categories...)
	})
}

// Clear drops all state for token.
func (s *Store) Clear(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[token]; ok {
		delete(s.entries, token)
		s.remove(e)
		s.reportSize()
	}
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) update(token string, fn func(*SessionState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return false
	}
	next := e.value.clone()
	fn(&next)
	next.CategoryChart = domain.PeaksPerCategory(next.Peaks, next.Categories)
	next.RefreshedAt = domain.Now()
	e.value = next
	s.moveToFront(e)
	return true
}

func (s *Store) set(key string, value SessionState) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
	s.reportSize()
}

func (s *Store) reportSize() {
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(len(s.entries)))
	}
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
	if s.metrics != nil {
		s.metrics.SessionEvictions.Inc()
	}
}
