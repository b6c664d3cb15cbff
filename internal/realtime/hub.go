package realtime

import (
	"context"
	"sync"
)

// Hub - брокер внутри процесса
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[*hubListener]struct{}
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[*hubListener]struct{})}
}

func (h *Hub) Publish(_ context.Context, topic string) error {
	h.Notify(topic)
	return nil
}

// Notify будит всех слушателей топика, не блокируясь
func (h *Hub) Notify(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for l := range h.listeners[topic] {
		select {
		case l.ch <- struct{}{}:
		default:
			// сигнал уже ждёт обработки
		}
	}
}

func (h *Hub) Subscribe(topic string) Listener {
	l := &hubListener{hub: h, topic: topic, ch: make(chan struct{}, 1)}

	h.mu.Lock()
	set, ok := h.listeners[topic]
	if !ok {
		set = make(map[*hubListener]struct{})
		h.listeners[topic] = set
	}
	set[l] = struct{}{}
	h.mu.Unlock()

	return l
}

// ListenerCount - число живых подписок на топик
func (h *Hub) ListenerCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[topic])
}

// TotalListeners - число живых подписок по всем топикам
func (h *Hub) TotalListeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.listeners {
		total += len(set)
	}
	return total
}

func (h *Hub) remove(l *hubListener) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.listeners[l.topic]
	delete(set, l)
	if len(set) == 0 {
		delete(h.listeners, l.topic)
	}
}

type hubListener struct {
	hub   *Hub
	topic string
	ch    chan struct{}
	once  sync.Once
}

func (l *hubListener) C() <-chan struct{} {
	return l.ch
}

func (l *hubListener) Close() {
	l.once.Do(func() {
		l.hub.remove(l)
	})
}
