package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/crypto"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/validate"
)

const maxPasswordLen = 128

// Directory maps email to credentials and user id to profile. Passwords are
// only ever stored as Argon2id hashes.
type Directory struct {
	db     core.AuthStorage
	hasher crypto.PasswordHandler
	locks  *keyedMutex
	now    func() time.Time
	log    logger.Logger
}

func NewDirectory(db core.AuthStorage, hasher crypto.PasswordHandler, log logger.Logger) *Directory {
	if log == nil {
		log = logger.Discard()
	}
	return &Directory{
		db:     db,
		hasher: hasher,
		locks:  newKeyedMutex(),
		now:    time.Now,
		log:    log.With("component", "directory"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	switch {
	case password == "":
		return core.ErrPasswordRequired
	case len(password) > maxPasswordLen:
		return core.ErrPasswordTooLong
	}
	return nil
}

// Lookup finds the identity registered under email.
func (d *Directory) Lookup(ctx context.Context, email string) (*core.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, core.ErrEmailRequired
	}
	if validate.Email(strings.TrimSpace(email)) != nil {
		return nil, core.ErrInvalidEmail
	}
	return d.db.GetUserByEmail(ctx, normalizeEmail(email))
}

// Register creates the identity, its credential account and its profile
// (role user). A failure part way removes whatever was already written, so
// callers see all three records or none.
func (d *Directory) Register(ctx context.Context, in core.SignUpInput) (*core.User, error) {
	if errs := validate.Struct(in); errs != nil {
		return nil, errs
	}
	email := normalizeEmail(in.Email)

	unlock := d.locks.Lock(email)
	defer unlock()

	existing, err := d.db.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrAccountExists
	}

	hashed, err := d.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := d.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user := &core.User{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &core.Account{
		ID:         uuid.Must(uuid.NewV7()).String(),
		UserID:     user.ID,
		ProviderID: core.CredentialProvider,
		AccountID:  email,
		Password:   &hashed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	profile := &core.Profile{
		ID:        user.ID,
		Email:     email,
		FullName:  name,
		Role:      core.RoleUser,
		CreatedAt: now,
	}

	if err := d.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := d.db.CreateAccount(ctx, account); err != nil {
		d.rollback(ctx, user.ID, "")
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if err := d.db.CreateProfile(ctx, profile); err != nil {
		d.rollback(ctx, user.ID, account.ID)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	d.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (d *Directory) rollback(ctx context.Context, userID, accountID string) {
	if accountID != "" {
		if err := d.db.DeleteAccount(ctx, accountID); err != nil {
			d.log.Error("rollback: delete account", "user_id", userID, "error", err)
		}
	}
	if err := d.db.DeleteUser(ctx, userID); err != nil {
		d.log.Error("rollback: delete user", "user_id", userID, "error", err)
	}
}

func (d *Directory) credential(ctx context.Context, userID string) (*core.Account, error) {
	accounts, err := d.db.GetAccountByUserAndProvider(ctx, userID, core.CredentialProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

// Authenticate checks email and password. Unknown emails and wrong
// passwords both fail with core.ErrInvalidCredentials.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, core.ErrEmailRequired
	}
	if password == "" {
		return nil, core.ErrPasswordRequired
	}

	user, err := d.db.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	account, err := d.credential(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Password == nil {
		return nil, core.ErrInvalidCredentials
	}

	valid, err := d.hasher.Verify(password, *account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the stored hash for userID.
func (d *Directory) ChangePassword(ctx context.Context, userID, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}

	unlock := d.locks.Lock(userID)
	defer unlock()

	account, err := d.credential(ctx, userID)
	if err != nil {
		return err
	}
	if account == nil {
		return core.ErrUserNotFound
	}

	hashed, err := d.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.Password = &hashed
	if err := d.db.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	d.log.Info("password changed", "user_id", userID)
	return nil
}

func (d *Directory) User(ctx context.Context, userID string) (*core.User, error) {
	return d.db.GetUserByID(ctx, userID)
}

func (d *Directory) Profile(ctx context.Context, userID string) (*core.Profile, error) {
	return d.db.GetProfile(ctx, userID)
}

func (d *Directory) Profiles(ctx context.Context) ([]*core.Profile, error) {
	return d.db.ListProfiles(ctx)
}

// TouchLastLogin stamps the profile's last login with the current time.
func (d *Directory) TouchLastLogin(ctx context.Context, userID string) error {
	unlock := d.locks.Lock(userID)
	defer unlock()

	profile, err := d.db.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	now := d.now()
	profile.LastLogin = &now
	return d.db.UpdateProfile(ctx, profile)
}

// SetRole changes the role on a profile.
func (d *Directory) SetRole(ctx context.Context, userID string, role core.Role) (*core.Profile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", core.ErrInvalidInput, role)
	}

	unlock := d.locks.Lock(userID)
	defer unlock()

	profile, err := d.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Role = role
	if err := d.db.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Remove deletes every record belonging to userID: API sessions, the
// credential account, the profile and the identity itself.
func (d *Directory) Remove(ctx context.Context, userID string) error {
	unlock := d.locks.Lock(userID)
	defer unlock()

	if _, err := d.db.GetUserByID(ctx, userID); err != nil {
		return err
	}

	if _, err := d.db.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	account, err := d.credential(ctx, userID)
	if err != nil {
		return err
	}
	if account != nil {
		if err := d.db.DeleteAccount(ctx, account.ID); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
	}
	if err := d.db.DeleteProfile(ctx, userID); err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := d.db.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	d.log.Info("user removed", "user_id", userID)
	return nil
}

// Seed inserts a user with a fixed id and role. Used for demo data.
func (d *Directory) Seed(ctx context.Context, id, email, password, name string, role core.Role) (*core.User, error) {
	hashed, err := d.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := d.now()
	email = normalizeEmail(email)
	user := &core.User{ID: id, Email: email, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := d.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	if err := d.db.CreateAccount(ctx, &core.Account{
		ID: "acc-" + id, UserID: id, ProviderID: core.CredentialProvider, AccountID: email,
		Password: &hashed, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		d.rollback(ctx, id, "")
		return nil, err
	}
	if err := d.db.CreateProfile(ctx, &core.Profile{
		ID: id, Email: email, FullName: name, Role: role, CreatedAt: now,
	}); err != nil {
		d.rollback(ctx, id, "acc-"+id)
		return nil, err
	}
	return user, nil
}
