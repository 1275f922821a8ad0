package ws

import (
	"sync"

	"github.com/DoyleJ11/gamesync/internal/types"
	"github.com/DoyleJ11/gamesync/internal/ui"
)

// Relay is the toast, router and feedback surface for connected clients:
// everything a session says about a game goes to that game's sockets.
type Relay struct {
	mu      sync.Mutex
	clients map[string]map[string]chan types.ServerMessage // gameID -> clientID -> outbox
}

func NewRelay() *Relay {
	return &Relay{clients: make(map[string]map[string]chan types.ServerMessage)}
}

func (r *Relay) Join(gameID, clientID string) <-chan types.ServerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(chan types.ServerMessage, 16)
	if r.clients[gameID] == nil {
		r.clients[gameID] = make(map[string]chan types.ServerMessage)
	}
	r.clients[gameID][clientID] = out
	return out
}

func (r *Relay) Leave(gameID, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.clients[gameID][clientID]
	if !ok {
		return
	}
	close(out)
	delete(r.clients[gameID], clientID)
	if len(r.clients[gameID]) == 0 {
		delete(r.clients, gameID)
	}
}

func (r *Relay) Notify(gameID string, n ui.Notice) {
	r.publish(gameID, types.ServerMessage{Type: types.MsgNotice, GameID: gameID, Notice: &n})
}

func (r *Relay) Navigate(gameID string, route string) {
	r.publish(gameID, types.ServerMessage{Type: types.MsgNavigate, GameID: gameID, Route: route})
}

func (r *Relay) Feedback(gameID string, positive bool) {
	r.publish(gameID, types.ServerMessage{Type: types.MsgFeedback, GameID: gameID, Positive: &positive})
}

func (r *Relay) publish(gameID string, m types.ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, out := range r.clients[gameID] {
		select {
		case out <- m:
		default: // slow client; it still gets views
		}
	}
}
