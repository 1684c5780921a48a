package sse

import (
	"context"
	"sync"

	"ms-edarshan/internal/models"
)

// AllTemples subscribes to updates for every temple.
const AllTemples = ""

// VisitorEventEmitter fans visitor count changes out to dashboard clients.
type VisitorEventEmitter struct {
	// key: templeID (AllTemples for the global feed)
	clients map[string][]chan models.VisitorUpdate
	mu      sync.RWMutex
}

func NewVisitorEventEmitter() *VisitorEventEmitter {
	return &VisitorEventEmitter{
		clients: make(map[string][]chan models.VisitorUpdate),
	}
}

// Subscribe returns a channel that receives updates until ctx is done, at
// which point the channel is closed.
func (e *VisitorEventEmitter) Subscribe(ctx context.Context, templeID string) <-chan models.VisitorUpdate {
	clientChan := make(chan models.VisitorUpdate, 10)

	e.mu.Lock()
	e.clients[templeID] = append(e.clients[templeID], clientChan)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(templeID, clientChan)
	}()

	return clientChan
}

// Emit never blocks; a client whose buffer is full misses the update.
func (e *VisitorEventEmitter) Emit(update models.VisitorUpdate) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := []string{update.TempleID}
	if update.TempleID != AllTemples {
		keys = append(keys, AllTemples)
	}
	for _, key := range keys {
		for _, clientChan := range e.clients[key] {
			select {
			case clientChan <- update:
			default:
			}
		}
	}
}

func (e *VisitorEventEmitter) removeClient(templeID string, clientChan chan models.VisitorUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[templeID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[templeID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[templeID]) == 0 {
		delete(e.clients, templeID)
	}
}

// ClientCount returns the number of clients subscribed under templeID.
func (e *VisitorEventEmitter) ClientCount(templeID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[templeID])
}

// TotalClients counts every open stream.
func (e *VisitorEventEmitter) TotalClients() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, clients := range e.clients {
		n += len(clients)
	}
	return n
}
