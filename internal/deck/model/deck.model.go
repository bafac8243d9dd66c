package model

import (
	"encoding/json"
	"time"
)

// Presentation is one shared slide deck, addressed by its slug.
type Presentation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Slide struct {
	ID             string    `json:"id"`
	PresentationID string    `json:"presentation_id"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
}

// Element is a positioned visual on a slide. Kind is one of
// text, rect, circle, arrow, image; Props is a kind-specific JSON
// blob the server never interprets.
type Element struct {
	ID        string          `json:"id"`
	SlideID   string          `json:"slide_id"`
	Kind      string          `json:"kind"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	W         float64         `json:"w"`
	H         float64         `json:"h"`
	Z         int             `json:"z"`
	Props     json.RawMessage `json:"props"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type User struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership assigns a role to a user within one deck. Nickname is
// denormalized so the (presentation, nickname) pair stays unique.
type Membership struct {
	PresentationID string `json:"presentation_id"`
	UserID         string `json:"user_id"`
	Nickname       string `json:"nickname"`
	Role           string `json:"role"`
}

type CreateDeckRequest struct {
	Title string `json:"title"`
}

// DeckSnapshot is the full persisted state of one deck, served to a
// client before it opens a live session.
type DeckSnapshot struct {
	Presentation Presentation `json:"presentation"`
	Slides       []Slide      `json:"slides"`
	Elements     []Element    `json:"elements"`
	Members      []Membership `json:"members"`
}
