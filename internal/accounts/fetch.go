package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// ProfileNotFoundError reports that a profile never became visible within the
// configured retry budget.
type ProfileNotFoundError struct {
	ProfileID uuid.UUID
	Attempts  int
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile %s not found after %d attempts", e.ProfileID, e.Attempts)
}

// FetchProfileWithBackoff polls for a profile that may not be visible yet,
// doubling the delay between attempts. Registration commits on one connection
// while the follow-up read may land on a replica, so a short window of
// not-found is expected.
func (s *Service) FetchProfileWithBackoff(ctx context.Context, id uuid.UUID, cfg config.ProfileConfig) (*models.Profile, error) {
	attempts := cfg.FetchMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.FetchBaseDelay
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		profile, err := s.profiles.FindByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		if profile != nil {
			return profile, nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, &ProfileNotFoundError{ProfileID: id, Attempts: attempts}
}
