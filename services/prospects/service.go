package prospects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"slotwise/internal/database"
	"slotwise/models"
)

// ErrNotFound is returned when a prospect ID does not exist.
var ErrNotFound = database.ErrNotFound

// Service manages the contact book of scheduling prospects.
type Service struct {
	repo *database.ProspectRepository
	now  func() time.Time
}

func NewService(repo *database.ProspectRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Input carries the caller-editable prospect fields.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", models.ErrValidation)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Prospect, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (models.Prospect, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (models.Prospect, error) {
	if err := in.validate(); err != nil {
		return models.Prospect{}, err
	}
	p := models.Prospect{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Company:   strings.TrimSpace(in.Company),
		Phone:     strings.TrimSpace(in.Phone),
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return models.Prospect{}, fmt.Errorf("creating prospect: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (models.Prospect, error) {
	if err := in.validate(); err != nil {
		return models.Prospect{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Prospect{}, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Email = strings.TrimSpace(in.Email)
	p.Company = strings.TrimSpace(in.Company)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Notes = in.Notes
	if err := s.repo.Update(ctx, p); err != nil {
		return models.Prospect{}, fmt.Errorf("updating prospect: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// TouchLastMessage records that a scheduling message went out to the
// prospect with the given email, if one exists.
func (s *Service) TouchLastMessage(ctx context.Context, email string) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return
	}
	for _, p := range list {
		if strings.EqualFold(p.Email, email) {
			p.LastMessageAt = s.now().UTC()
			_ = s.repo.Update(ctx, p)
			return
		}
	}
}
