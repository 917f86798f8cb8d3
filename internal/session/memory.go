package session

import "sync"

// memoryKV keeps the session in process memory
type memoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns a Store that lives as long as the process
func NewMemoryStore() Store {
	return newStore(&memoryKV{data: make(map[string][]byte)})
}

func (m *memoryKV) get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryKV) delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryKV) close() error {
	return nil
}
