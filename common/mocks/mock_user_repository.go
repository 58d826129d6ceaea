package mocks

import (
	"context"
	"sync"

	"github.com/nuibits/userbase"
)

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct {
	mu         sync.Mutex
	byUsername map[string]userbase.User
	byID       map[string]string
}

// NewMockUserRepository instantiates a new (mocked) user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		byUsername: make(map[string]userbase.User),
		byID:       make(map[string]string),
	}
}

// AddUser registers the user record. Test setup helper.
func (ur *MockUserRepository) AddUser(u userbase.User) {
	ur.mu.Lock()
	defer ur.mu.Unlock()
	ur.byUsername[u.Username] = u
	ur.byID[u.UserID] = u.Username
}

func (ur *MockUserRepository) GetByID(ctx context.Context, userID string) (userbase.User, error) {
	ur.mu.Lock()
	defer ur.mu.Unlock()
	username, ok := ur.byID[userID]
	if !ok {
		return userbase.User{}, userbase.Errorf(userbase.NotFound, "user %s not found", userID)
	}
	return ur.byUsername[username], nil
}

func (ur *MockUserRepository) UpdateBundleSequence(ctx context.Context, username string, bundleSequenceNo int64) error {
	ur.mu.Lock()
	defer ur.mu.Unlock()
	u, ok := ur.byUsername[username]
	if !ok {
		return userbase.Errorf(userbase.NotFound, "user %s not found", username)
	}
	u.BundleSequenceNo = bundleSequenceNo
	ur.byUsername[username] = u
	return nil
}
