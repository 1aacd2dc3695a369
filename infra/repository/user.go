package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainuser "github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/pesabank/pesabank/pkg/dto"
	"github.com/pesabank/pesabank/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates the user repository backed by the given session.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*domainuser.User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, MapUserError(err)
	}
	return hydrateUser(&u), nil
}

// GetByEmail implements repository.UserRepository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, MapUserError(err)
	}
	return hydrateUser(&u), nil
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, create dto.UserCreate) error {
	now := time.Now().UTC()
	u := User{
		ID:          create.ID,
		FirstName:   create.FirstName,
		LastName:    create.LastName,
		Email:       create.Email,
		PhoneNumber: create.PhoneNumber,
		HashedPIN:   create.HashedPIN,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return MapUserError(r.db.WithContext(ctx).Create(&u).Error)
}

// Update implements repository.UserRepository.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	updates := make(map[string]any)
	if update.FirstName != nil {
		updates["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		updates["last_name"] = *update.LastName
	}
	if update.PhoneNumber != nil {
		updates["phone_number"] = *update.PhoneNumber
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return MapUserError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainuser.ErrUserNotFound
	}
	return nil
}

func hydrateUser(u *User) *domainuser.User {
	return domainuser.NewUserFromData(
		u.ID,
		u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.HashedPIN,
		u.CreatedAt, u.UpdatedAt,
	)
}
