package socket

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"presodeck/internal/deck/model"
	"presodeck/internal/deck/repository"
	"presodeck/pkg/logger"

	"github.com/google/uuid"
)

// Hub owns all live session state for the process: the room map, the
// connection registry and the advisory lock table. Persisted deck
// state stays behind the repository and is never cached here beyond a
// single operation.
type Hub struct {
	Repo     *repository.DeckRepository
	Registry *ConnRegistry
	Locks    *LockManager

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool // slug -> joined connections
}

func NewHub(repo *repository.DeckRepository) *Hub {
	return &Hub{
		Repo:     repo,
		Registry: NewConnRegistry(),
		Locks:    NewLockManager(),
		rooms:    make(map[string]map[*Client]bool),
	}
}

// Resolve maps a (slug, nickname) pair to the deck, a stable user and
// a membership row, creating the user and membership on first sight.
// The first member a deck ever gets becomes creator; everyone after
// starts as viewer. Idempotent after the first call for a pair.
func (h *Hub) Resolve(slug, nickname string) (model.Presentation, model.User, model.Membership, error) {
	preso, err := h.Repo.GetPresentationBySlug(slug)
	if err == sql.ErrNoRows {
		return model.Presentation{}, model.User{}, model.Membership{}, ErrNotFound
	}
	if err != nil {
		return model.Presentation{}, model.User{}, model.Membership{}, err
	}

	user, err := h.Repo.GetUserByNickname(nickname)
	if err == sql.ErrNoRows {
		user = model.User{ID: uuid.NewString(), Nickname: nickname, CreatedAt: time.Now().UTC()}
		if err := h.Repo.CreateUser(user); err != nil {
			return model.Presentation{}, model.User{}, model.Membership{}, err
		}
	} else if err != nil {
		return model.Presentation{}, model.User{}, model.Membership{}, err
	}

	hasMembers, err := h.Repo.HasMemberships(preso.ID)
	if err != nil {
		return model.Presentation{}, model.User{}, model.Membership{}, err
	}

	membership, err := h.Repo.GetMembership(preso.ID, user.ID)
	if err == sql.ErrNoRows {
		role := RoleViewer
		if !hasMembers {
			role = RoleCreator
		}
		membership = model.Membership{
			PresentationID: preso.ID,
			UserID:         user.ID,
			Nickname:       user.Nickname,
			Role:           role,
		}
		if err := h.Repo.CreateMembership(membership); err != nil {
			return model.Presentation{}, model.User{}, model.Membership{}, err
		}
	} else if err != nil {
		return model.Presentation{}, model.User{}, model.Membership{}, err
	}

	return preso, user, membership, nil
}

// register adds a resolved connection to its deck's broadcast group,
// sends the presence snapshot to the newcomer and announces the join
// to everyone else.
func (h *Hub) register(c *Client, role string) {
	h.Registry.Register(c.ID, ConnEntry{UserID: c.UserID, Nickname: c.Nickname, Slug: c.Slug})

	h.mu.Lock()
	if h.rooms[c.Slug] == nil {
		h.rooms[c.Slug] = make(map[*Client]bool)
	}
	h.rooms[c.Slug][c] = true
	h.mu.Unlock()

	members, err := h.Repo.ListMemberships(c.PresoID)
	if err != nil {
		logger.Sugar.Errorf("Failed to load members for presence snapshot of %s: %v", c.Slug, err)
	}
	snapshot := PresenceSnapshot{Members: make([]Member, 0, len(members)), Locks: h.Locks.Snapshot()}
	for _, m := range members {
		snapshot.Members = append(snapshot.Members, Member{UserID: m.UserID, Nickname: m.Nickname, Role: m.Role})
	}
	h.toClient(c, PresenceSnapshotType, snapshot)

	h.toGroupExcept(c.Slug, c, UserJoinedType, UserJoinedPayload{
		ConnectionID: c.ID,
		UserID:       c.UserID,
		Nickname:     c.Nickname,
		Role:         role,
	})
	logger.Sugar.Infof("User %s joined deck %s as %s", c.Nickname, c.Slug, role)
}

// unregister tears down everything the connection owned: its registry
// entry, its room slot and every advisory lock of its user. Remaining
// members see the departure and the cleaned lock map, in that order.
// A connection that never joined is a no-op.
func (h *Hub) unregister(c *Client) {
	entry, ok := h.Registry.Unregister(c.ID)
	if !ok {
		return
	}

	h.mu.Lock()
	if room, exists := h.rooms[c.Slug]; exists {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.Slug)
			logger.Sugar.Infof("Closed empty room: %s", c.Slug)
		}
	}
	h.mu.Unlock()
	c.shutdown()

	h.Locks.ReleaseAll(entry.UserID)

	h.toGroup(c.Slug, UserLeftType, UserLeftPayload{
		ConnectionID: c.ID,
		UserID:       entry.UserID,
		Nickname:     entry.Nickname,
	})
	h.toGroup(c.Slug, LocksUpdatedType, h.Locks.Snapshot())
}

// --- Fan-out ---
//
// Fire-and-forget from the coordinator's point of view. Per-recipient
// ordering is upheld by each client's buffered Send channel, drained
// by a single writePump.

func (h *Hub) toGroup(slug string, msgType string, payload interface{}) {
	h.send(h.roomSnapshot(slug, nil), msgType, payload)
}

func (h *Hub) toGroupExcept(slug string, except *Client, msgType string, payload interface{}) {
	h.send(h.roomSnapshot(slug, except), msgType, payload)
}

func (h *Hub) toClient(c *Client, msgType string, payload interface{}) {
	h.send([]*Client{c}, msgType, payload)
}

// roomSnapshot copies the recipient list under the read lock so the
// room map is never iterated while being mutated.
func (h *Hub) roomSnapshot(slug string, except *Client) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.rooms[slug]))
	for client := range h.rooms[slug] {
		if client != except {
			clients = append(clients, client)
		}
	}
	return clients
}

func (h *Hub) send(clients []*Client, msgType string, payload interface{}) {
	if len(clients) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", msgType, err)
		return
	}
	frame, err := json.Marshal(WSMessage{Type: msgType, Payload: body})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s frame: %v", msgType, err)
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- frame:
		default:
			// The pumps detect and drop dead clients; here we only
			// refuse to block the sender.
			logger.Sugar.Warnf("Client %s's send buffer is full, dropping %s", client.Nickname, msgType)
		}
	}
}
