package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is a process-local store for demos and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryOTPRepository keeps one record per identifier in a map.
type MemoryOTPRepository struct {
	mu      sync.Mutex
	records map[string]models.OTPRecord
}

func NewMemoryOTPRepository() *MemoryOTPRepository {
	return &MemoryOTPRepository{records: make(map[string]models.OTPRecord)}
}

func (r *MemoryOTPRepository) Upsert(_ context.Context, record *models.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.Identifier] = *record
	return nil
}

func (r *MemoryOTPRepository) Get(_ context.Context, identifier string) (*models.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[identifier]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *MemoryOTPRepository) Delete(_ context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, identifier)
	return nil
}

func (r *MemoryOTPRepository) Consume(_ context.Context, identifier, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[identifier]
	if !ok || record.Code != code {
		return false, nil
	}
	delete(r.records, identifier)
	return true, nil
}

func (r *MemoryOTPRepository) AddFailedAttempt(_ context.Context, identifier, code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[identifier]
	if !ok || record.Code != code {
		return 0, nil
	}
	record.Attempts++
	r.records[identifier] = record
	return record.Attempts, nil
}

func (r *MemoryOTPRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, record := range r.records {
		if record.ExpiresAt.Before(before) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored records.
func (r *MemoryOTPRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
