package socket

import (
	"encoding/json"
	"errors"
)

// Client -> server operation types.
const (
	AddSlideType      = "ADD_SLIDE"
	DeleteSlideType   = "DELETE_SLIDE"
	CreateElementType = "CREATE_ELEMENT"
	UpdateElementType = "UPDATE_ELEMENT"
	DeleteElementType = "DELETE_ELEMENT"
	LockElementType   = "LOCK_ELEMENT"
	UnlockElementType = "UNLOCK_ELEMENT"
	SetRoleType       = "SET_ROLE"
	CursorType        = "CURSOR"
)

// Server -> client event types.
const (
	PresenceSnapshotType = "PRESENCE_SNAPSHOT"
	UserJoinedType       = "USER_JOINED"
	UserLeftType         = "USER_LEFT"
	LocksUpdatedType     = "LOCKS_UPDATED"
	SlideAddedType       = "SLIDE_ADDED"
	SlideDeletedType     = "SLIDE_DELETED"
	ElementCreatedType   = "ELEMENT_CREATED"
	ElementUpdatedType   = "ELEMENT_UPDATED"
	ElementDeletedType   = "ELEMENT_DELETED"
	RoleChangedType      = "ROLE_CHANGED"
	LockResultType       = "LOCK_RESULT"
	ErrorType            = "ERROR"
)

const (
	RoleCreator = "creator"
	RoleEditor  = "editor"
	RoleViewer  = "viewer"
)

// Operation failures surfaced to the calling connection. Each is
// scoped to the single request that caused it; none tears down the
// connection.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrLocked          = errors.New("element locked by another user")
	ErrInvalidArgument = errors.New("invalid argument")
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PresenceSnapshot struct {
	Members []Member          `json:"members"`
	Locks   map[string]string `json:"locks"`
}

type Member struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

type UserJoinedPayload struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	Role         string `json:"role"`
}

type UserLeftPayload struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
}

type SlideRef struct {
	SlideID string `json:"slide_id"`
}

type ElementRef struct {
	ElementID string `json:"element_id"`
}

type LockResult struct {
	ElementID string `json:"element_id"`
	Acquired  bool   `json:"acquired"`
}

type RoleChange struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type ErrorPayload struct {
	Op      string `json:"op"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorCode maps an operation failure onto its wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "invalid_argument"
	}
}
