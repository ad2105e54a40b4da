package keylock

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrTimeout indica que no se pudo adquirir exclusividad a tiempo.
	// El caller puede reintentar (es transitorio, no terminal).
	ErrTimeout = errors.New("keylock: acquire timeout")
)

// Map serializa operaciones por key (una mascota = una key).
// Keys distintas no se bloquean entre sí.
type Map struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // capacidad 1: quien mete el token tiene el lock
	refs int
}

func New() *Map {
	return &Map{locks: make(map[string]*entry)}
}

// Acquire toma el lock de key, esperando hasta que ctx venza.
// Devuelve la función de release; el caller DEBE llamarla.
func (m *Map) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() { m.release(key, e) }, nil
	case <-ctx.Done():
		m.unref(key, e)
		return nil, ErrTimeout
	}
}

func (m *Map) release(key string, e *entry) {
	<-e.ch
	m.unref(key, e)
}

// unref limpia la entry cuando nadie más la espera, para no
// acumular una key por cada mascota que alguna vez se tocó.
func (m *Map) unref(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
