package service

import "sync"

// Registry is the ordered set of handles an application manages.
type Registry struct {
	mu      sync.Mutex
	handles []*Handle
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register wraps svc in a Handle and appends it.
func (r *Registry) Register(svc Service, opts ...Option) (*Handle, error) {
	h := NewHandle(svc, opts...)
	if err := r.Add(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Add appends h. Duplicates are allowed.
func (r *Registry) Add(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.handles = append(r.handles, h)
	return nil
}

// Freeze rejects every later Add.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Handles returns the handles in registration order.
func (r *Registry) Handles() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, len(r.handles))
	copy(out, r.handles)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
