package socket

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"presodeck/internal/deck/model"

	"github.com/google/uuid"
)

// handleMessage runs one inbound operation to completion. It is only
// ever called from the connection's readPump, so operations from one
// connection are strictly ordered; operations from different
// connections run concurrently and meet at the registry, the lock
// table and the database. A failure is reported to the caller and
// never touches the connection itself.
func (h *Hub) handleMessage(c *Client, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "", fmt.Errorf("%w: malformed message", ErrInvalidArgument))
		return
	}

	var err error
	switch msg.Type {
	case AddSlideType:
		err = h.addSlide(c)
	case DeleteSlideType:
		err = h.deleteSlide(c, msg.Payload)
	case CreateElementType:
		err = h.createElement(c, msg.Payload)
	case UpdateElementType:
		err = h.updateElement(c, msg.Payload)
	case DeleteElementType:
		err = h.deleteElement(c, msg.Payload)
	case LockElementType:
		err = h.lockElement(c, msg.Payload)
	case UnlockElementType:
		err = h.unlockElement(c, msg.Payload)
	case SetRoleType:
		err = h.setRole(c, msg.Payload)
	case CursorType:
		h.cursor(c, msg.Payload)
	default:
		err = fmt.Errorf("%w: unknown message type %q", ErrInvalidArgument, msg.Type)
	}

	if err != nil {
		h.sendError(c, msg.Type, err)
	}
}

// requireRole re-resolves the caller's role from its membership row.
// The cached connection entry only vouches for identity; roles can
// change mid-session via SET_ROLE.
func (h *Hub) requireRole(c *Client) (string, error) {
	m, err := h.Repo.GetMembership(c.PresoID, c.UserID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: not a member", ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

func (h *Hub) addSlide(c *Client) error {
	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canManageSlides(role) {
		return fmt.Errorf("%w: only the creator can add slides", ErrUnauthorized)
	}

	maxPos, err := h.Repo.MaxSlidePosition(c.PresoID)
	if err != nil {
		return err
	}
	slide := model.Slide{
		ID:             uuid.NewString(),
		PresentationID: c.PresoID,
		Position:       maxPos + 1,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Repo.CreateSlide(slide); err != nil {
		return err
	}

	h.toGroup(c.Slug, SlideAddedType, slide)
	return nil
}

func (h *Hub) deleteSlide(c *Client, payload json.RawMessage) error {
	var ref SlideRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.SlideID == "" {
		return fmt.Errorf("%w: slide_id required", ErrInvalidArgument)
	}

	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canManageSlides(role) {
		return fmt.Errorf("%w: only the creator can delete slides", ErrUnauthorized)
	}

	rows, err := h.Repo.DeleteSlide(ref.SlideID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Already gone, nothing to announce.
		return nil
	}

	h.toGroup(c.Slug, SlideDeletedType, ref)
	return nil
}

func (h *Hub) createElement(c *Client, payload json.RawMessage) error {
	var element model.Element
	if err := json.Unmarshal(payload, &element); err != nil {
		return fmt.Errorf("%w: malformed element", ErrInvalidArgument)
	}

	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canEditElements(role) {
		return fmt.Errorf("%w: insufficient role", ErrUnauthorized)
	}

	// Client-supplied id and timestamp are ignored.
	element.ID = uuid.NewString()
	element.UpdatedAt = time.Now().UTC()
	if len(element.Props) == 0 {
		element.Props = json.RawMessage(`{}`)
	}
	if err := h.Repo.CreateElement(element); err != nil {
		return err
	}

	// The caller keeps its optimistic local copy.
	h.toGroupExcept(c.Slug, c, ElementCreatedType, element)
	return nil
}

func (h *Hub) updateElement(c *Client, payload json.RawMessage) error {
	var element model.Element
	if err := json.Unmarshal(payload, &element); err != nil || element.ID == "" {
		return fmt.Errorf("%w: element id required", ErrInvalidArgument)
	}

	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canEditElements(role) {
		return fmt.Errorf("%w: insufficient role", ErrUnauthorized)
	}

	if owner, held := h.Locks.Owner(element.ID); held && owner != c.UserID {
		return ErrLocked
	}

	element.UpdatedAt = time.Now().UTC()
	if len(element.Props) == 0 {
		element.Props = json.RawMessage(`{}`)
	}
	rows, err := h.Repo.UpdateElement(element)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: element does not exist", ErrNotFound)
	}

	h.toGroupExcept(c.Slug, c, ElementUpdatedType, element)
	return nil
}

func (h *Hub) deleteElement(c *Client, payload json.RawMessage) error {
	var ref ElementRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.ElementID == "" {
		return fmt.Errorf("%w: element_id required", ErrInvalidArgument)
	}

	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canEditElements(role) {
		return fmt.Errorf("%w: insufficient role", ErrUnauthorized)
	}

	if owner, held := h.Locks.Owner(ref.ElementID); held && owner != c.UserID {
		return ErrLocked
	}

	rows, err := h.Repo.DeleteElement(ref.ElementID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	h.toGroupExcept(c.Slug, c, ElementDeletedType, ref)
	return nil
}

// lockElement reports the outcome to the caller and broadcasts the
// full lock map to the whole group either way, so every client
// converges on the same view.
func (h *Hub) lockElement(c *Client, payload json.RawMessage) error {
	var ref ElementRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.ElementID == "" {
		return fmt.Errorf("%w: element_id required", ErrInvalidArgument)
	}

	acquired := h.Locks.Acquire(ref.ElementID, c.UserID)
	h.toGroup(c.Slug, LocksUpdatedType, h.Locks.Snapshot())
	h.toClient(c, LockResultType, LockResult{ElementID: ref.ElementID, Acquired: acquired})
	return nil
}

// unlockElement releases unconditionally; unlocking an unlocked
// element still broadcasts the (unchanged) snapshot.
func (h *Hub) unlockElement(c *Client, payload json.RawMessage) error {
	var ref ElementRef
	if err := json.Unmarshal(payload, &ref); err != nil || ref.ElementID == "" {
		return fmt.Errorf("%w: element_id required", ErrInvalidArgument)
	}

	h.Locks.Release(ref.ElementID)
	h.toGroup(c.Slug, LocksUpdatedType, h.Locks.Snapshot())
	return nil
}

func (h *Hub) setRole(c *Client, payload json.RawMessage) error {
	var change RoleChange
	if err := json.Unmarshal(payload, &change); err != nil || change.UserID == "" {
		return fmt.Errorf("%w: user_id required", ErrInvalidArgument)
	}

	role, err := h.requireRole(c)
	if err != nil {
		return err
	}
	if !canChangeRoles(role) {
		return fmt.Errorf("%w: only the creator can change roles", ErrUnauthorized)
	}
	if !assignableRole(change.Role) {
		return fmt.Errorf("%w: role must be editor or viewer", ErrInvalidArgument)
	}

	rows, err := h.Repo.UpdateMembershipRole(c.PresoID, change.UserID, change.Role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: member not found", ErrNotFound)
	}

	h.toGroup(c.Slug, RoleChangedType, change)
	return nil
}

// cursor re-broadcasts the payload verbatim to everyone else in the
// deck. Nothing is persisted or retained.
func (h *Hub) cursor(c *Client, payload json.RawMessage) {
	h.toGroupExcept(c.Slug, c, CursorType, payload)
}

func (h *Hub) sendError(c *Client, op string, err error) {
	h.toClient(c, ErrorType, ErrorPayload{Op: op, Code: errorCode(err), Message: err.Error()})
}
