package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"doc-notification/models"
	"doc-notification/storage"

	"github.com/google/uuid"
)

const (
	UsersKey       = "users"
	CurrentUserKey = "currentUser"
)

// Default account seeded on startup so the app is usable without registering.
const (
	DefaultEmail         = "doctor@gmail.com"
	DefaultPassword      = "0000"
	DefaultName          = "Dr. Défaut"
	DefaultSpecialty     = "Médecine générale"
	UnspecifiedSpecialty = "Non spécifié"
)

// UserService is the user directory: accounts, credentials and the
// session pointer.
//
// Passwords are stored as given. The session pointer holds a copy of the
// public profile but is always resolved again by email against the
// directory.
type UserService struct {
	store     storage.Store
	users     *storage.Collection[models.User]
	validator Validator
	logger    *slog.Logger
	now       func() time.Time

	sessionMu sync.Mutex
}

// NewUserService creates a user directory on top of store
func NewUserService(store storage.Store, v Validator, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:     store,
		users:     storage.NewCollection[models.User](store, UsersKey),
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureDefaultAccount inserts the default account if no user has its
// email. It reports whether an account was created.
func (us *UserService) EnsureDefaultAccount(ctx context.Context) (bool, error) {
	created := false
	err := us.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		if indexByEmail(users, DefaultEmail) >= 0 {
			return users, nil
		}
		created = true
		return append(users, models.User{
			ID:        uuid.New().String(),
			Email:     DefaultEmail,
			Password:  DefaultPassword,
			Name:      DefaultName,
			Specialty: DefaultSpecialty,
			CreatedAt: us.now().UTC(),
		}), nil
	})
	if err != nil {
		return false, err
	}

	if created {
		us.logger.Info("default account created", "email", DefaultEmail)
	}
	return created, nil
}

// Register creates a new account. Email uniqueness is exact and
// case-sensitive.
func (us *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Specialty = strings.TrimSpace(req.Specialty)

	if us.validator != nil {
		if err := us.validator.Validate(&req); err != nil {
			return nil, invalid(err)
		}
	}

	if req.Specialty == "" {
		req.Specialty = UnspecifiedSpecialty
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Specialty: req.Specialty,
		CreatedAt: us.now().UTC(),
	}

	err := us.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		if indexByEmail(users, user.Email) >= 0 {
			return nil, ErrUserExists
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	us.logger.Info("user registered", "email", user.Email)
	return &user, nil
}

// Authenticate returns the user whose email and password both match
// exactly. Unknown email and wrong password yield the same ErrAuth.
func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	users, err := us.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByEmail(users, email)
	if i < 0 || users[i].Password == "" || users[i].Password != password {
		return nil, ErrAuth
	}

	user := users[i]
	return &user, nil
}

// Login authenticates and points the session at the user
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.Authenticate(ctx, email, password)
	if err != nil {
		us.logger.Warn("login failed", "email", email)
		return nil, err
	}

	if err := us.SetSession(ctx, user); err != nil {
		return nil, err
	}

	us.logger.Info("user logged in", "email", user.Email)
	return user, nil
}

// Logout clears the session pointer
func (us *UserService) Logout(ctx context.Context) error {
	return us.SetSession(ctx, nil)
}

// SetSession writes the session pointer, or clears it when user is nil
func (us *UserService) SetSession(ctx context.Context, user *models.User) error {
	us.sessionMu.Lock()
	defer us.sessionMu.Unlock()

	if user == nil {
		return us.store.Remove(ctx, CurrentUserKey)
	}
	return us.store.Set(ctx, CurrentUserKey, user.Public())
}

// CurrentUser resolves the session pointer against the directory.
// A pointer to a user that no longer exists is cleared.
func (us *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	us.sessionMu.Lock()
	defer us.sessionMu.Unlock()

	var pointer models.PublicUser
	found, err := us.store.Get(ctx, CurrentUserKey, &pointer)
	if err != nil {
		return nil, err
	}
	if !found || pointer.Email == "" {
		return nil, ErrNoSession
	}

	user, err := us.GetByEmail(ctx, pointer.Email)
	if errors.Is(err, ErrUserNotFound) {
		us.logger.Warn("session points at unknown user, clearing", "email", pointer.Email)
		if rmErr := us.store.Remove(ctx, CurrentUserKey); rmErr != nil {
			return nil, rmErr
		}
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail looks a user up by exact email
func (us *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := us.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexByEmail(users, email)
	if i < 0 {
		return nil, ErrUserNotFound
	}

	user := users[i]
	return &user, nil
}

// UpdateProfile merges the provided fields into the user's profile and
// refreshes the session pointer when it points at that user.
func (us *UserService) UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) (*models.User, error) {
	if us.validator != nil {
		if err := us.validator.Validate(&update); err != nil {
			return nil, invalid(err)
		}
	}

	var updated models.User
	err := us.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		i := indexByEmail(users, email)
		if i < 0 {
			return nil, ErrUserNotFound
		}

		if update.Name != nil {
			users[i].Name = strings.TrimSpace(*update.Name)
		}
		if update.Specialty != nil {
			users[i].Specialty = strings.TrimSpace(*update.Specialty)
		}
		if update.Phone != nil {
			users[i].Phone = strings.TrimSpace(*update.Phone)
		}

		updated = users[i]
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	if err := us.refreshSession(ctx, updated); err != nil {
		return nil, err
	}

	us.logger.Info("profile updated", "email", email)
	return &updated, nil
}

// List returns every account in storage order
func (us *UserService) List(ctx context.Context) ([]models.User, error) {
	return us.users.Load(ctx)
}

// ReplaceAll overwrites the whole directory. Each record needs an email and
// emails must be unique. A record without a password keeps the password
// currently stored for the same email, if any.
func (us *UserService) ReplaceAll(ctx context.Context, users []models.User) error {
	seen := make(map[string]struct{}, len(users))
	for i, u := range users {
		if u.Email == "" {
			return invalidf("users[%d]: email is required", i)
		}
		if _, dup := seen[u.Email]; dup {
			return invalidf("users[%d]: duplicate email %q", i, u.Email)
		}
		seen[u.Email] = struct{}{}
	}

	return us.users.Mutate(ctx, func(current []models.User) ([]models.User, error) {
		passwords := make(map[string]string, len(current))
		for _, u := range current {
			passwords[u.Email] = u.Password
		}

		next := make([]models.User, len(users))
		for i, u := range users {
			if u.Password == "" {
				u.Password = passwords[u.Email]
			}
			if u.ID == "" {
				u.ID = uuid.New().String()
			}
			next[i] = u
		}
		return next, nil
	})
}

func (us *UserService) refreshSession(ctx context.Context, user models.User) error {
	us.sessionMu.Lock()
	defer us.sessionMu.Unlock()

	var pointer models.PublicUser
	found, err := us.store.Get(ctx, CurrentUserKey, &pointer)
	if err != nil {
		return err
	}
	if !found || pointer.Email != user.Email {
		return nil
	}
	return us.store.Set(ctx, CurrentUserKey, user.Public())
}

func indexByEmail(users []models.User, email string) int {
	for i, u := range users {
		if u.Email == email {
			return i
		}
	}
	return -1
}
