package repository

import (
	"database/sql"

	"presodeck/internal/deck/model"
	"presodeck/pkg/logger"
)

type DeckRepository struct {
	DB *sql.DB
}

func NewDeckRepository(db *sql.DB) *DeckRepository {
	return &DeckRepository{DB: db}
}

// --- Presentations ---

func (r *DeckRepository) GetPresentationBySlug(slug string) (model.Presentation, error) {
	var p model.Presentation
	err := r.DB.QueryRow("SELECT id, title, slug, created_at FROM presentations WHERE slug = $1", slug).
		Scan(&p.ID, &p.Title, &p.Slug, &p.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get presentation by slug %s: %v", slug, err)
	}
	return p, err
}

func (r *DeckRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM presentations WHERE slug = $1)", slug).Scan(&exists)
	if err != nil {
		logger.Sugar.Errorf("Failed to check slug %s: %v", slug, err)
	}
	return exists, err
}

func (r *DeckRepository) CreatePresentation(p model.Presentation) error {
	_, err := r.DB.Exec(`INSERT INTO presentations (id, title, slug, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Title, p.Slug, p.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create presentation %s: %v", p.Slug, err)
	}
	return err
}

func (r *DeckRepository) ListPresentations() ([]model.Presentation, error) {
	rows, err := r.DB.Query("SELECT id, title, slug, created_at FROM presentations ORDER BY created_at DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to list presentations: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []model.Presentation
	for rows.Next() {
		var p model.Presentation
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.CreatedAt); err != nil {
			continue
		}
		decks = append(decks, p)
	}
	return decks, nil
}

// --- Slides ---

func (r *DeckRepository) GetSlides(presentationID string) ([]model.Slide, error) {
	rows, err := r.DB.Query("SELECT id, presentation_id, position, created_at FROM slides WHERE presentation_id = $1 ORDER BY position ASC", presentationID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get slides for presentation %s: %v", presentationID, err)
		return nil, err
	}
	defer rows.Close()

	var slides []model.Slide
	for rows.Next() {
		var s model.Slide
		if err := rows.Scan(&s.ID, &s.PresentationID, &s.Position, &s.CreatedAt); err != nil {
			continue
		}
		slides = append(slides, s)
	}
	return slides, nil
}

// MaxSlidePosition returns -1 for a deck with no slides. Note the
// read-then-insert pair in AddSlide is not atomic: two concurrent
// adds on one deck can compute the same position.
func (r *DeckRepository) MaxSlidePosition(presentationID string) (int, error) {
	var max int
	err := r.DB.QueryRow("SELECT COALESCE(MAX(position), -1) FROM slides WHERE presentation_id = $1", presentationID).Scan(&max)
	if err != nil {
		logger.Sugar.Errorf("Failed to get max slide position for %s: %v", presentationID, err)
	}
	return max, err
}

func (r *DeckRepository) CreateSlide(s model.Slide) error {
	_, err := r.DB.Exec(`INSERT INTO slides (id, presentation_id, position, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.PresentationID, s.Position, s.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create slide in %s: %v", s.PresentationID, err)
	}
	return err
}

func (r *DeckRepository) DeleteSlide(slideID string) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM slides WHERE id = $1", slideID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete slide %s: %v", slideID, err)
		return 0, err
	}
	return result.RowsAffected()
}

// --- Elements ---

func (r *DeckRepository) GetElementsByPresentation(presentationID string) ([]model.Element, error) {
	rows, err := r.DB.Query(`
		SELECT e.id, e.slide_id, e.kind, e.x, e.y, e.w, e.h, e.z, e.props, e.updated_at
		FROM elements e JOIN slides s ON e.slide_id = s.id
		WHERE s.presentation_id = $1`, presentationID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get elements for presentation %s: %v", presentationID, err)
		return nil, err
	}
	defer rows.Close()

	var elements []model.Element
	for rows.Next() {
		var e model.Element
		var props []byte
		if err := rows.Scan(&e.ID, &e.SlideID, &e.Kind, &e.X, &e.Y, &e.W, &e.H, &e.Z, &props, &e.UpdatedAt); err != nil {
			continue
		}
		e.Props = props
		elements = append(elements, e)
	}
	return elements, nil
}

func (r *DeckRepository) CreateElement(e model.Element) error {
	_, err := r.DB.Exec(`INSERT INTO elements (id, slide_id, kind, x, y, w, h, z, props, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.SlideID, e.Kind, e.X, e.Y, e.W, e.H, e.Z, string(e.Props), e.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create element on slide %s: %v", e.SlideID, err)
	}
	return err
}

// UpdateElement overwrites the mutable fields of an element. Zero
// rows affected means the element does not exist.
func (r *DeckRepository) UpdateElement(e model.Element) (int64, error) {
	result, err := r.DB.Exec(`UPDATE elements SET x = $1, y = $2, w = $3, h = $4, z = $5, kind = $6, props = $7, updated_at = $8 WHERE id = $9`,
		e.X, e.Y, e.W, e.H, e.Z, e.Kind, string(e.Props), e.UpdatedAt, e.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update element %s: %v", e.ID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DeckRepository) DeleteElement(elementID string) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM elements WHERE id = $1", elementID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete element %s: %v", elementID, err)
		return 0, err
	}
	return result.RowsAffected()
}

// --- Users ---

func (r *DeckRepository) GetUserByNickname(nickname string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRow("SELECT id, nickname, created_at FROM users WHERE nickname = $1", nickname).
		Scan(&u.ID, &u.Nickname, &u.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get user by nickname %s: %v", nickname, err)
	}
	return u, err
}

func (r *DeckRepository) CreateUser(u model.User) error {
	_, err := r.DB.Exec(`INSERT INTO users (id, nickname, created_at) VALUES ($1, $2, $3)`,
		u.ID, u.Nickname, u.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", u.Nickname, err)
	}
	return err
}

// --- Memberships ---

func (r *DeckRepository) HasMemberships(presentationID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM memberships WHERE presentation_id = $1)", presentationID).Scan(&exists)
	if err != nil {
		logger.Sugar.Errorf("Failed to check memberships for %s: %v", presentationID, err)
	}
	return exists, err
}

func (r *DeckRepository) GetMembership(presentationID, userID string) (model.Membership, error) {
	var m model.Membership
	err := r.DB.QueryRow("SELECT presentation_id, user_id, nickname, role FROM memberships WHERE presentation_id = $1 AND user_id = $2",
		presentationID, userID).Scan(&m.PresentationID, &m.UserID, &m.Nickname, &m.Role)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get membership for user %s in %s: %v", userID, presentationID, err)
	}
	return m, err
}

func (r *DeckRepository) CreateMembership(m model.Membership) error {
	_, err := r.DB.Exec(`INSERT INTO memberships (presentation_id, user_id, nickname, role) VALUES ($1, $2, $3, $4)`,
		m.PresentationID, m.UserID, m.Nickname, m.Role)
	if err != nil {
		logger.Sugar.Errorf("Failed to create membership for user %s in %s: %v", m.UserID, m.PresentationID, err)
	}
	return err
}

// UpdateMembershipRole returns zero rows affected when the target is
// not a member of the deck.
func (r *DeckRepository) UpdateMembershipRole(presentationID, userID, role string) (int64, error) {
	result, err := r.DB.Exec("UPDATE memberships SET role = $1 WHERE presentation_id = $2 AND user_id = $3",
		role, presentationID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update role for user %s in %s: %v", userID, presentationID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DeckRepository) ListMemberships(presentationID string) ([]model.Membership, error) {
	rows, err := r.DB.Query("SELECT presentation_id, user_id, nickname, role FROM memberships WHERE presentation_id = $1",
		presentationID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list memberships for %s: %v", presentationID, err)
		return nil, err
	}
	defer rows.Close()

	var members []model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.PresentationID, &m.UserID, &m.Nickname, &m.Role); err != nil {
			continue
		}
		members = append(members, m)
	}
	return members, nil
}
