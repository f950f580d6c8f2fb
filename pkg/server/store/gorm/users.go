package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/store"
)

var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// CreateUser relies on the unique index on users.email. The connection must
// be opened with TranslateError so the violation surfaces as ErrDuplicatedKey.
func (s *UsersStore) CreateUser(ctx context.Context, user model.User) error {
	err := s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrUserExists
	}
	return err
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, store.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
