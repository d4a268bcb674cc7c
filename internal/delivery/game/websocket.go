package game

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"goban/internal/domain/game"
	goerrors "goban/internal/errors"
	gameuc "goban/internal/usecase/game"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client serializes writes to one connection; gorilla allows a single writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg game.GameStateResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// hub tracks the open connections of every game.
type hub struct {
	log   *zap.SugaredLogger
	mu    sync.RWMutex
	games map[string]map[*client]struct{}
}

func newHub(log *zap.SugaredLogger) *hub {
	return &hub{log: log, games: make(map[string]map[*client]struct{})}
}

func (h *hub) join(key string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[key] == nil {
		h.games[key] = make(map[*client]struct{})
	}
	h.games[key][c] = struct{}{}
}

func (h *hub) leave(key string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.games[key], c)
	if len(h.games[key]) == 0 {
		delete(h.games, key)
	}
}

func (h *hub) broadcast(key string, msg game.GameStateResponse) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.games[key]))
	for c := range h.games[key] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.log.Warnf("write to a watcher of game %s failed: %v", key, err)
			c.conn.Close()
			h.leave(key, c)
		}
	}
}

// HandleGameSocket streams commands from the client. Accepted commands reach
// every connection of the game through the hub; a rejected command is
// answered to its sender only.
func (g *GameHandler) HandleGameSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	state, err := g.gameUC.State(ctx, key)
	if err != nil {
		g.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error:", err)
		return
	}
	c := &client{conn: conn}
	g.hub.join(key, c)
	defer func() {
		g.hub.leave(key, c)
		conn.Close()
	}()

	if err := c.send(game.GameStateResponse{Kind: "state", State: &state}); err != nil {
		return
	}

	for {
		var msg game.CommandMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Debugf("read from game %s socket: %v", key, err)
			}
			return
		}

		cmd, err := commandOf(msg)
		if err == nil {
			if _, err = g.gameUC.Apply(ctx, key, cmd); err == nil {
				continue
			}
		}

		g.log.Debugf("command %q on game %s rejected: %v", msg.Kind, key, err)
		if err := c.send(game.GameStateResponse{Kind: msg.Kind, Error: err.Error()}); err != nil {
			return
		}
	}
}

func commandOf(msg game.CommandMessage) (gameuc.Command, error) {
	kind, err := gameuc.ParseCommandKind(msg.Kind)
	if err != nil {
		return gameuc.Command{}, err
	}
	cmd := gameuc.Command{Kind: kind}
	if kind == gameuc.CommandPlay || kind == gameuc.CommandSelectVariation {
		p, err := msg.Resolve()
		if err != nil {
			return gameuc.Command{}, fmt.Errorf("%w: %w", goerrors.ErrInvalidRequest, err)
		}
		cmd.Point = &p
	}
	return cmd, nil
}
