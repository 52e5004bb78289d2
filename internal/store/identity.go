package store

import (
	"errors"
	"math/rand/v2"
	"net/mail"
	"strings"

	"linkup/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is the single failure returned by Authenticate. The
// same value is returned whether the identifier is unknown or the password is
// wrong, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = &Error{Kind: KindForbidden, Message: "invalid credentials"}

// dummyHash is compared against when the identifier does not resolve to a
// user, so that failed lookups take the same time as failed passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("linkup-no-such-user"), bcrypt.DefaultCost)

// ContactKeyDraw returns one candidate contact key. Tests narrow the space to
// force collisions; production draws uniformly from the nine-digit range.
type ContactKeyDraw func() int64

func defaultContactKeyDraw() int64 {
	return models.ContactKeyMin + rand.Int64N(models.ContactKeyMax-models.ContactKeyMin+1)
}

// Identity owns User records: creation, credential verification and the
// contact-key namespace.
type Identity struct {
	db   *gorm.DB
	draw ContactKeyDraw
}

// NewIdentity builds an Identity over db. A nil draw uses the full
// nine-digit key space.
func NewIdentity(db *gorm.DB, draw ContactKeyDraw) *Identity {
	if draw == nil {
		draw = defaultContactKeyDraw
	}
	return &Identity{db: db, draw: draw}
}

// CreateUserParams carries the fields needed to register an account.
type CreateUserParams struct {
	Username string
	Email    string
	Password string
}

// CreateUser registers a new account. The contact key is drawn at random and
// re-drawn on collision in a flat loop; the unique index on the column is the
// backstop for two registrations racing on the same key.
func (s *Identity) CreateUser(params CreateUserParams) (*models.User, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if params.Username == "" {
		return nil, invalidInput("username must not be empty")
	}
	if params.Password == "" {
		return nil, invalidInput("password must not be empty")
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", params.Username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, duplicate("username or email already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for {
		user := models.User{
			Username:     params.Username,
			Email:        email,
			PasswordHash: string(hash),
			ContactKey:   s.draw(),
			IsActive:     true,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			var taken int64
			if err := tx.Model(&models.User{}).
				Where("contact_key = ?", user.ContactKey).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return gorm.ErrDuplicatedKey
			}
			return tx.Create(&user).Error
		})
		if err == nil {
			return &user, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Either the contact key collided or a concurrent registration
			// grabbed the username/email between our check and the insert.
			var clash int64
			if cerr := s.db.Model(&models.User{}).
				Where("username = ? OR email = ?", params.Username, email).
				Count(&clash).Error; cerr != nil {
				return nil, cerr
			}
			if clash > 0 {
				return nil, duplicate("username or email already taken")
			}
			continue
		}
		return nil, err
	}
}

// CreateSuperuser registers an account with staff and superuser flags set.
func (s *Identity) CreateSuperuser(params CreateUserParams) (*models.User, error) {
	user, err := s.CreateUser(params)
	if err != nil {
		return nil, err
	}
	return user, s.PromoteToSuperuser(user)
}

// PromoteToSuperuser grants elevated flags to an existing user.
func (s *Identity) PromoteToSuperuser(user *models.User) error {
	user.IsStaff = true
	user.IsSuperuser = true
	return s.db.Model(user).Updates(map[string]any{
		"is_staff":     true,
		"is_superuser": true,
	}).Error
}

// Authenticate resolves identifier (username or email) and verifies the
// password. Any failure is ErrInvalidCredentials.
func (s *Identity) Authenticate(identifier, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser fetches a user by ID.
func (s *Identity) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// LookupByContactKey resolves a shared contact key to its owner.
func (s *Identity) LookupByContactKey(key int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("contact_key = ?", key).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("no user with that contact key")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUserParams carries the self-service mutable fields; nil means keep.
type UpdateUserParams struct {
	Username *string
	Email    *string
	Password *string
}

// UpdateUser applies self-service profile changes. The contact key is never
// touched here; it is immutable once assigned.
func (s *Identity) UpdateUser(id uint, params UpdateUserParams) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if params.Username != nil {
		if *params.Username == "" {
			return nil, invalidInput("username must not be empty")
		}
		updates["username"] = *params.Username
	}
	if params.Email != nil {
		email, err := normalizeEmail(*params.Email)
		if err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if params.Password != nil {
		if *params.Password == "" {
			return nil, invalidInput("password must not be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, duplicate("username or email already taken")
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account and everything it owns: requests in either
// direction, friendship rows on either side, and messages sent or received.
// Explicit deletes inside one transaction keep the cascade portable across
// backends that do not enforce the FK constraints.
func (s *Identity) DeleteUser(id uint) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_user_id = ? OR to_user_id = ?", id, id).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR friend_of_id = ?", id, id).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}
		if err := tx.Where("from_user_id = ? OR to_user_id = ?", id, id).
			Delete(&models.FriendRequest{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.User{}, id).Error
	})
}

// ListUsers returns one page of accounts plus the total count, for the admin
// surface.
func (s *Identity) ListUsers(page, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	offset := (page - 1) * limit
	if err := s.db.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// normalizeEmail validates the address and lowercases the domain part, the
// same normalization the registration form applies.
func normalizeEmail(email string) (string, error) {
	if email == "" {
		return "", invalidInput("email address is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalidInput("email address is malformed")
	}
	at := strings.LastIndex(email, "@")
	return email[:at] + strings.ToLower(email[at:]), nil
}
