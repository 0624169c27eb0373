package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crazy-eights-server/internal/crazyeights"
)

// StatusConnectedElsewhere is the application close code sent to a
// connection that has been superseded by a newer connection for the same
// player. Clients must not retry after seeing it.
const StatusConnectedElsewhere = websocket.StatusCode(4000)

const (
	sendQueueSize = 16
	writeTimeout  = 10 * time.Second
)

// client wraps one live websocket as a push handle for one player. Sends
// enqueue onto a buffered channel drained by a single writer goroutine,
// so the game never blocks on a slow or dead connection, and snapshots
// reach the wire in the order their mutations completed.
type client struct {
	playerID int
	connID   string
	conn     *websocket.Conn
	send     chan crazyeights.GameStatus
	done     chan struct{}
	once     sync.Once
}

func newClient(playerID int, conn *websocket.Conn) *client {
	return &client{
		playerID: playerID,
		connID:   uuid.New().String(),
		conn:     conn,
		send:     make(chan crazyeights.GameStatus, sendQueueSize),
		done:     make(chan struct{}),
	}
}

// Send queues a snapshot for delivery. If the queue is full the oldest
// snapshot is dropped: every push is a full snapshot, so only the newest
// one matters to the client.
func (c *client) Send(status crazyeights.GameStatus) {
	for {
		select {
		case c.send <- status:
			return
		case <-c.done:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

// Cancel tears the connection down because a newer connection took over
// this player's identity.
func (c *client) Cancel() {
	c.close(StatusConnectedElsewhere, "Connected from another device")
}

func (c *client) close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		if err := c.conn.Close(code, reason); err != nil {
			logrus.WithField("connection", c.connID).WithError(err).Debug("close failed")
		}
	})
}

// writeLoop drains the send queue onto the socket. A write failure means
// the connection is gone; the read loop will notice and detach, so the
// loop just stops.
func (c *client) writeLoop() {
	for {
		select {
		case status := <-c.send:
			data, err := json.Marshal(status)
			if err != nil {
				logrus.WithField("connection", c.connID).WithError(err).Error("marshal game status")
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err = c.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"connection": c.connID,
					"player":     c.playerID,
				}).WithError(err).Debug("push failed, awaiting detach")
				return
			}
		case <-c.done:
			return
		}
	}
}

// ConnectionManager owns the player id → live client table. At most one
// live client exists per player: attaching a second connection for an id
// synchronously cancels the first.
type ConnectionManager struct {
	clients map[int]*client
	mu      sync.Mutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[int]*client),
	}
}

// Attach installs conn as the player's push handle, cancelling any prior
// connection first, and immediately sends the new connection a snapshot.
func (cm *ConnectionManager) Attach(g *crazyeights.Game, playerID int, conn *websocket.Conn) (*client, error) {
	cl := newClient(playerID, conn)

	cm.mu.Lock()
	old := cm.clients[playerID]
	cm.clients[playerID] = cl
	cm.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	if err := g.SetConnection(playerID, cl); err != nil {
		cm.mu.Lock()
		if cm.clients[playerID] == cl {
			delete(cm.clients, playerID)
		}
		cm.mu.Unlock()
		return nil, err
	}

	go cl.writeLoop()

	logrus.WithFields(logrus.Fields{
		"connection": cl.connID,
		"player":     playerID,
		"replaced":   old != nil,
	}).Info("player attached")

	// The (re)joined client gets an immediate snapshot; nobody else's
	// state changed, so nobody else hears about it.
	if err := g.BroadcastTo(playerID); err != nil {
		return nil, err
	}
	return cl, nil
}

// Detach clears the player's push handle, but only if cl is still the
// attached client: a reconnect may already have replaced it.
func (cm *ConnectionManager) Detach(g *crazyeights.Game, cl *client) {
	cm.mu.Lock()
	current := cm.clients[cl.playerID] == cl
	if current {
		delete(cm.clients, cl.playerID)
	}
	cm.mu.Unlock()

	if !current {
		return
	}
	if err := g.SetConnection(cl.playerID, nil); err != nil {
		logrus.WithField("player", cl.playerID).WithError(err).Warn("detach: clearing connection failed")
	}
	logrus.WithFields(logrus.Fields{
		"connection": cl.connID,
		"player":     cl.playerID,
	}).Info("player detached")
}

// CloseAll disconnects every live client with the given close code, used
// when the game they belong to goes away or the server shuts down.
func (cm *ConnectionManager) CloseAll(code websocket.StatusCode, reason string) {
	cm.mu.Lock()
	clients := make([]*client, 0, len(cm.clients))
	for _, cl := range cm.clients {
		clients = append(clients, cl)
	}
	clear(cm.clients)
	cm.mu.Unlock()

	for _, cl := range clients {
		cl.close(code, reason)
	}
}

// Count returns the number of live clients.
func (cm *ConnectionManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.clients)
}
