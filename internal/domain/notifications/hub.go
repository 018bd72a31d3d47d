package notifications

import (
	"sync"
)

// Listener recibe la lista completa y ordenada del usuario, no un diff.
// Se invoca en la goroutine que hizo el cambio: no debe bloquear ni escribir notificaciones.
type Listener func([]Notification)

// hub mantiene las suscripciones en vivo por usuario (reemplazo in-process del live query).
type hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Listener

	// deliverMu serializa las entregas para que un snapshot viejo no llegue después de uno nuevo.
	deliverMu sync.Mutex
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[uint64]Listener)}
}

func (h *hub) add(userID string, l Listener) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]Listener)
	}
	h.subs[userID][id] = l
	return id
}

func (h *hub) remove(userID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs[userID], id)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
}

func (h *hub) listeners(userID string) []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Listener, 0, len(h.subs[userID]))
	for _, l := range h.subs[userID] {
		out = append(out, l)
	}
	return out
}

func (h *hub) hasListeners(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, m := range h.subs {
		n += len(m)
	}
	return n
}
