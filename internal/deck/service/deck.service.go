package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"presodeck/internal/deck/model"
	"presodeck/internal/deck/repository"

	"github.com/google/uuid"
)

type DeckService struct {
	Repo *repository.DeckRepository
}

func NewDeckService(repo *repository.DeckRepository) *DeckService {
	return &DeckService{Repo: repo}
}

// CreateDeck inserts a new presentation under a slug derived from the
// title, plus its first slide at position 0.
func (s *DeckService) CreateDeck(title string) (model.Presentation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}

	slug, err := s.uniqueSlug(slugify(title))
	if err != nil {
		return model.Presentation{}, err
	}

	now := time.Now().UTC()
	p := model.Presentation{
		ID:        uuid.NewString(),
		Title:     title,
		Slug:      slug,
		CreatedAt: now,
	}
	if err := s.Repo.CreatePresentation(p); err != nil {
		return model.Presentation{}, err
	}

	first := model.Slide{
		ID:             uuid.NewString(),
		PresentationID: p.ID,
		Position:       0,
		CreatedAt:      now,
	}
	if err := s.Repo.CreateSlide(first); err != nil {
		return model.Presentation{}, err
	}
	return p, nil
}

func (s *DeckService) ListDecks() ([]model.Presentation, error) {
	return s.Repo.ListPresentations()
}

// GetSnapshot assembles the full persisted state of one deck. Returns
// sql.ErrNoRows when the slug is unknown.
func (s *DeckService) GetSnapshot(slug string) (*model.DeckSnapshot, error) {
	preso, err := s.Repo.GetPresentationBySlug(slug)
	if err != nil {
		return nil, err
	}

	slides, err := s.Repo.GetSlides(preso.ID)
	if err != nil {
		return nil, err
	}
	elements, err := s.Repo.GetElementsByPresentation(preso.ID)
	if err != nil {
		return nil, err
	}
	members, err := s.Repo.ListMemberships(preso.ID)
	if err != nil {
		return nil, err
	}

	snap := &model.DeckSnapshot{
		Presentation: preso,
		Slides:       slides,
		Elements:     elements,
		Members:      members,
	}
	if snap.Slides == nil {
		snap.Slides = []model.Slide{}
	}
	if snap.Elements == nil {
		snap.Elements = []model.Element{}
	}
	if snap.Members == nil {
		snap.Members = []model.Membership{}
	}
	return snap, nil
}

// uniqueSlug suffixes -2, -3, ... until the slug is free.
func (s *DeckService) uniqueSlug(base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		exists, err := s.Repo.SlugExists(slug)
		if err != nil && err != sql.ErrNoRows {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return uuid.NewString()[:8]
	}
	var sb strings.Builder
	for _, c := range strings.ToLower(input) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
		} else {
			sb.WriteRune('-')
		}
	}
	slug := sb.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
