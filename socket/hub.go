package socket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"resumebuilder/internal/resume/repository"
	"resumebuilder/pkg/logger"
	"resumebuilder/store"
)

const (
	StateType = "STATE" // Full snapshot after a command was applied
	ErrorType = "ERROR" // Command rejected, sent to the issuing client only
)

var ErrHubStopped = errors.New("socket: hub stopped")

type WSMessage struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Command string `json:"command"`
}

type commandResult struct {
	State store.State
	Err   error
}

type commandRequest struct {
	action store.Action
	from   *Client
	reply  chan commandResult // nil for websocket-originated commands
}

// Hub is the only goroutine that calls into store.Store. Every command, from
// HTTP or from a websocket client, is queued on one channel and applied in
// arrival order, so command N+1 always sees the snapshot produced by N.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	commands   chan commandRequest
	done       chan struct{}

	store *store.Store
	sink  repository.SnapshotSink

	// dirty tracking for SaveWorker
	mu      sync.Mutex
	version uint64
	saved   uint64
}

// NewHub wires the hub to st. sink may be nil, in which case SaveWorker has
// nothing to do.
func NewHub(st *store.Store, sink repository.SnapshotSink) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		commands:   make(chan commandRequest, 64),
		done:       make(chan struct{}),
		store:      st,
		sink:       sink,
	}
}

// Snapshot reads the latest published state without going through the queue.
func (h *Hub) Snapshot() store.State {
	return h.store.Snapshot()
}

// Submit queues a and waits for it to be applied.
func (h *Hub) Submit(ctx context.Context, a store.Action) (store.State, error) {
	req := commandRequest{action: a, reply: make(chan commandResult, 1)}
	select {
	case h.commands <- req:
	case <-h.done:
		return h.Snapshot(), ErrHubStopped
	case <-ctx.Done():
		return h.Snapshot(), ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.State, res.Err
	case <-h.done:
		return h.Snapshot(), ErrHubStopped
	case <-ctx.Done():
		return h.Snapshot(), ctx.Err()
	}
}

// Start runs the event loop and the save worker. The returned channel is
// closed once both have returned, which includes the final flush, so the
// sink can be closed safely after it.
func (h *Hub) Start(ctx context.Context, saveInterval time.Duration) <-chan struct{} {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		h.SaveWorker(ctx, saveInterval)
	}()

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()
	return stopped
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.Clients {
				h.removeClient(client)
			}
			return

		case client := <-h.Register:
			h.Clients[client] = true
			// A new client gets the full state so its editor starts in sync.
			if msg, err := h.stateMessage(h.store.Snapshot()); err == nil {
				h.sendTo(client, msg)
			}
			logger.Sugar.Infof("Client %s connected (%d open)", client.UserID, len(h.Clients))

		case client := <-h.Unregister:
			if h.Clients[client] {
				h.removeClient(client)
				logger.Sugar.Infof("Client %s disconnected (%d open)", client.UserID, len(h.Clients))
			}

		case req := <-h.commands:
			h.apply(req)
		}
	}
}

func (h *Hub) apply(req commandRequest) {
	before := h.store.Revision()
	st, err := h.store.Dispatch(req.action)
	if req.reply != nil {
		req.reply <- commandResult{State: st, Err: err}
	}

	if err != nil {
		if req.from != nil {
			h.sendError(req.from, req.action, err)
		}
		return
	}

	changed := h.store.Revision() != before
	if !changed && req.from == nil {
		return
	}

	msg, err := h.stateMessage(st)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling state broadcast: %v", err)
		return
	}
	if !changed {
		// Nothing to export or broadcast; the sender still gets its answer.
		h.sendTo(req.from, msg)
		return
	}

	h.mu.Lock()
	h.version++
	h.mu.Unlock()
	for client := range h.Clients {
		h.sendTo(client, msg)
	}
}

// sendTo never blocks the loop. A client whose buffer is full is lagging and
// gets dropped.
func (h *Hub) sendTo(client *Client, msg []byte) {
	if !h.Clients[client] {
		return
	}
	select {
	case client.Send <- msg:
	default:
		logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	if !h.Clients[client] {
		return
	}
	delete(h.Clients, client)
	close(client.Send)
}

func (h *Hub) stateMessage(st store.State) ([]byte, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: StateType, Payload: payload})
}

func (h *Hub) sendError(client *Client, a store.Action, cause error) {
	payload, _ := json.Marshal(ErrorPayload{
		Code:    store.Code(cause),
		Message: cause.Error(),
		Command: string(a.Type),
	})
	msg, _ := json.Marshal(WSMessage{Type: ErrorType, UserID: client.UserID, Payload: payload})
	h.sendTo(client, msg)
}

// SaveWorker pushes the latest snapshot to the sink whenever a command has
// changed the state since the last successful save. It returns when ctx is
// done, after one final flush; callers that close the sink must wait for it.
func (h *Hub) SaveWorker(ctx context.Context, interval time.Duration) {
	if h.sink == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			h.flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			h.flush(ctx)
		}
	}
}

func (h *Hub) flush(ctx context.Context) {
	h.mu.Lock()
	version := h.version
	dirty := version != h.saved
	h.mu.Unlock()
	if !dirty {
		return
	}

	// The snapshot may already include commands newer than version; that only
	// means the next tick writes the same state again.
	if err := h.sink.Save(ctx, h.store.Snapshot()); err != nil {
		logger.Sugar.Errorf("Failed to save snapshot: %v", err)
		return // stays dirty, retried on the next tick
	}

	h.mu.Lock()
	if h.saved < version {
		h.saved = version
	}
	h.mu.Unlock()
	logger.Sugar.Infof("Exported snapshot (version %d)", version)
}
