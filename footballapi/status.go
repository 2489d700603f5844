package footballapi

import "sync"

// Status is the last known request quota of the API key.
type Status struct {
	Limit     *int `json:"requests_limit"`
	Remaining *int `json:"requests_remaining"`
}

// StatusStore хранит квоту из последнего ответа API. Безопасен для конкурентного использования.
type StatusStore struct {
	mu     sync.RWMutex
	status Status
}

func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

// Record обновляет лимит; nil remaining сохраняет последнее известное значение.
func (s *StatusStore) Record(limit, remaining *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Limit = limit
	if remaining != nil {
		s.status.Remaining = remaining
	}
}

func (s *StatusStore) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
