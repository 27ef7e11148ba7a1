package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventdesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	nextID    string
	getErr    error
	updateErr error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		nextID:  "created-1",
	}
}

func (f *fakeUserRepo) add(u *domain.User) {
	f.byID[u.ID] = u
	if u.Email != "" {
		f.byEmail[u.Email] = u
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = f.nextID
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		// Return a copy so tests can mutate without affecting stored state.
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	users := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		users = append(users, &cp)
	}
	return users, len(users), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	old, ok := f.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if existing, ok := f.byEmail[u.Email]; ok && existing.ID != u.ID {
		return domain.ErrDuplicateEmail
	}
	delete(f.byEmail, old.Email)
	cp := *u
	f.add(&cp)
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byEmail, u.Email)
	delete(f.byID, id)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	salt string
	hash string
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.salt != "" {
		return f.salt, nil
	}
	return "salt", nil
}

func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash == "hash-"+password || (f.hash != "" && hash == f.hash) {
		return nil
	}
	return errors.New("mismatch")
}

const testTimeout = 2 * time.Second

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		role     domain.Role
		password string
		setup    func(*fakeUserRepo)
		wantErr  error
		check    func(t *testing.T, u *domain.User)
	}{
		{
			name:     "success with password",
			userName: "Alice",
			email:    "Alice@Example.COM",
			role:     domain.RoleAdministrator,
			password: "s3cret-pass",
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "created-1", u.ID)
				assert.Equal(t, "alice@example.com", u.Email)
				assert.Equal(t, "hash-s3cret-pass", u.PasswordHash)
				assert.NotEmpty(t, u.Salt)
				assert.NotNil(t, u.AssignedEventIDs)
			},
		},
		{
			name:     "success without password",
			userName: "Bob",
			email:    "bob@example.com",
			role:     domain.RoleOrganizer,
			check: func(t *testing.T, u *domain.User) {
				assert.Empty(t, u.PasswordHash)
				assert.Empty(t, u.Salt)
			},
		},
		{
			name:     "invalid email",
			userName: "Alice",
			email:    "not-an-email",
			role:     domain.RoleOrganizer,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "missing name",
			userName: "   ",
			email:    "alice@example.com",
			role:     domain.RoleOrganizer,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown role",
			userName: "Alice",
			email:    "alice@example.com",
			role:     domain.Role("superuser"),
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "duplicate email",
			userName: "Alice",
			email:    "taken@example.com",
			role:     domain.RoleOrganizer,
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "user-0", Email: "taken@example.com"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			if tt.setup != nil {
				tt.setup(repo)
			}
			svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

			user, err := svc.Create(ctx, tt.userName, tt.email, tt.role, tt.password, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, user)
			if tt.check != nil {
				tt.check(t, user)
			}
		})
	}
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	admin := func() *domain.User {
		return &domain.User{ID: "admin-1", Name: "Root", Email: "root@example.com", Role: domain.RoleAdministrator, CreatedAt: now, UpdatedAt: now}
	}
	organizer := func() *domain.User {
		return &domain.User{ID: "org-1", Name: "Olive", Email: "olive@example.com", Role: domain.RoleOrganizer, CreatedAt: now, UpdatedAt: now}
	}

	strPtr := func(s string) *string { return &s }
	rolePtr := func(r domain.Role) *domain.Role { return &r }

	t.Run("assigns events and promotes", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(admin())
		repo.add(organizer())
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		ids := []string{"event-1", "event-2"}
		updated, err := svc.Update(ctx, "admin-1", "org-1", domain.UserUpdate{
			Role:             rolePtr(domain.RoleAdministrator),
			AssignedEventIDs: &ids,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdministrator, updated.Role)
		assert.Equal(t, ids, updated.AssignedEventIDs)
	})

	t.Run("administrators cannot demote themselves", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(admin())
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		_, err := svc.Update(ctx, "admin-1", "admin-1", domain.UserUpdate{
			Role: rolePtr(domain.RoleOrganizer),
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "demote")
	})

	t.Run("another admin may demote", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(admin())
		repo.add(&domain.User{ID: "admin-2", Name: "Second", Email: "second@example.com", Role: domain.RoleAdministrator})
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		updated, err := svc.Update(ctx, "admin-1", "admin-2", domain.UserUpdate{
			Role: rolePtr(domain.RoleOrganizer),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleOrganizer, updated.Role)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(organizer())
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		updated, err := svc.Update(ctx, "admin-1", "org-1", domain.UserUpdate{
			Password: strPtr("new-password"),
		})
		require.NoError(t, err)
		assert.Equal(t, "hash-new-password", updated.PasswordHash)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(organizer())
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		_, err := svc.Update(ctx, "admin-1", "org-1", domain.UserUpdate{
			Email: strPtr("not-an-email"),
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate email surfaces sentinel", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(admin())
		repo.add(organizer())
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		_, err := svc.Update(ctx, "admin-1", "org-1", domain.UserUpdate{
			Email: strPtr("root@example.com"),
		})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		_, err := svc.Update(ctx, "admin-1", "ghost", domain.UserUpdate{})
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(&domain.User{ID: "org-1", Email: "olive@example.com", Role: domain.RoleOrganizer})
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		require.NoError(t, svc.Delete(ctx, "admin-1", "org-1"))
		_, err := repo.GetByID(ctx, "org-1")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add(&domain.User{ID: "admin-1", Email: "root@example.com", Role: domain.RoleAdministrator})
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		err := svc.Delete(ctx, "admin-1", "admin-1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

		require.ErrorIs(t, svc.Delete(ctx, "admin-1", "ghost"), domain.ErrUserNotFound)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()

	repo := newFakeUserRepo()
	repo.add(&domain.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleOrganizer})
	svc := NewUserService(repo, &fakePasswordHasher{}, testTimeout)

	user, err := svc.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	repo.getErr = sql.ErrConnDone
	_, err = svc.GetByID(ctx, "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}
