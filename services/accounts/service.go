package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"slotwise/internal/database"
	"slotwise/models"
)

// Service persists Google-authenticated accounts and their OAuth tokens.
type Service struct {
	repo *database.AccountRepository
	now  func() time.Time
}

func NewService(repo *database.AccountRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Profile is what the OAuth callback learns about the user from Google.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// Upsert records a login: it creates the account on first sight and
// refreshes profile and tokens afterwards. Google only hands out a refresh
// token on the first consent, so an empty refresh token never overwrites a
// stored one.
func (s *Service) Upsert(ctx context.Context, p Profile, accessToken, refreshToken string, tokenExpiry time.Time) (models.Account, error) {
	now := s.now().UTC()

	acct, err := s.repo.GetByGoogleID(ctx, p.GoogleID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		acct = models.Account{
			ID:           uuid.NewString(),
			GoogleID:     p.GoogleID,
			Email:        p.Email,
			Name:         p.Name,
			Picture:      p.Picture,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenExpiry:  tokenExpiry,
			CreatedAt:    now,
			LastLogin:    now,
		}
		if err := s.repo.Insert(ctx, acct); err != nil {
			return models.Account{}, fmt.Errorf("creating account: %w", err)
		}
		return acct, nil
	case err != nil:
		return models.Account{}, fmt.Errorf("looking up account: %w", err)
	}

	acct.Email = p.Email
	acct.Name = p.Name
	acct.Picture = p.Picture
	acct.AccessToken = accessToken
	acct.TokenExpiry = tokenExpiry
	if refreshToken != "" {
		acct.RefreshToken = refreshToken
	}
	acct.LastLogin = now

	if err := s.repo.Update(ctx, acct); err != nil {
		return models.Account{}, fmt.Errorf("updating account: %w", err)
	}
	return acct, nil
}

// Get loads an account by its internal ID.
func (s *Service) Get(ctx context.Context, id string) (models.Account, error) {
	acct, err := s.repo.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Account{}, models.ErrUnauthenticated
	}
	return acct, err
}
