package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository lookups return (nil, nil) when the user does not exist.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

// OTPRepository keeps at most one record per identifier.
type OTPRepository interface {
	// Upsert inserts the record or replaces every column of the existing one, resetting attempts.
	Upsert(ctx context.Context, record *models.OTPRecord) error
	// Get returns (nil, nil) when there is no record.
	Get(ctx context.Context, identifier string) (*models.OTPRecord, error)
	Delete(ctx context.Context, identifier string) error
	// Consume deletes the record only if it still holds code, and reports whether it did.
	Consume(ctx context.Context, identifier, code string) (bool, error)
	// AddFailedAttempt increments the attempt counter if the record still holds code
	// and returns the new count, or 0 when the record is gone or was replaced.
	AddFailedAttempt(ctx context.Context, identifier, code string) (int, error)
	// DeleteExpired removes records whose expiry is before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
