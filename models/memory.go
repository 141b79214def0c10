package models

import (
	"context"
	"sync"
)

// MemoryRepository keeps everything in process memory. It exists for tests
// and for running the service without a database; semantics mirror
// PostgresRepository, including conflict-tolerant inserts and the cascade
// on client deletion.
type MemoryRepository struct {
	mu           sync.Mutex
	clients      []Client
	measurements []Measurement

	clientIDCounter      uint
	measurementIDCounter uint
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) ListClients(ctx context.Context) ([]Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Client, len(r.clients))
	copy(out, r.clients)
	return out, nil
}

func (r *MemoryRepository) GetClientByID(ctx context.Context, id uint) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.clients {
		if r.clients[i].ID == id {
			c := r.clients[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateClient(ctx context.Context, client *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client.ID != 0 {
		for i := range r.clients {
			if r.clients[i].ID == client.ID {
				// Conflicting insert is ignored, same as ON CONFLICT DO NOTHING.
				return nil
			}
		}
	} else {
		r.clientIDCounter++
		client.ID = r.clientIDCounter
	}
	r.clients = append(r.clients, *client)
	return nil
}

func (r *MemoryRepository) UpdateClient(ctx context.Context, client *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.clients {
		if r.clients[i].ID == client.ID {
			r.clients[i] = *client
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteClient(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.clients {
		if r.clients[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	r.clients = append(r.clients[:idx], r.clients[idx+1:]...)

	kept := r.measurements[:0]
	for _, m := range r.measurements {
		if m.ClientID != id {
			kept = append(kept, m)
		}
	}
	r.measurements = kept
	return nil
}

func (r *MemoryRepository) ListClientMeasurements(ctx context.Context, clientID uint) ([]Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Measurement
	for _, m := range r.measurements {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetMeasurementByID(ctx context.Context, id uint) (*Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.measurements {
		if r.measurements[i].ID == id {
			m := r.measurements[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateMeasurement(ctx context.Context, m *Measurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID != 0 {
		for i := range r.measurements {
			if r.measurements[i].ID == m.ID {
				return nil
			}
		}
	} else {
		r.measurementIDCounter++
		m.ID = r.measurementIDCounter
	}
	r.measurements = append(r.measurements, *m)
	return nil
}

func (r *MemoryRepository) UpdateMeasurement(ctx context.Context, m *Measurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.measurements {
		if r.measurements[i].ID == m.ID {
			r.measurements[i] = *m
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) DeleteMeasurement(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.measurements {
		if r.measurements[i].ID == id {
			r.measurements = append(r.measurements[:i], r.measurements[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Close() error {
	return nil
}
