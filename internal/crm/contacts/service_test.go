package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

type mockRepository struct {
	contacts map[int64]*Contact
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{contacts: make(map[int64]*Contact), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, contact Contact) (int64, error) {
	id := m.nextID
	m.nextID++
	contact.ID = id
	m.contacts[id] = &contact
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Contact, error) {
	contact, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *contact
	return &clone, nil
}

func (m *mockRepository) List(ctx context.Context, filter Filter) ([]Contact, int, error) {
	var out []Contact
	for _, contact := range m.contacts {
		if filter.PreparerID != nil {
			if contact.AssignedPreparerID == nil || *contact.AssignedPreparerID != *filter.PreparerID {
				continue
			}
		}
		if filter.Status != nil && contact.Status != *filter.Status {
			continue
		}
		out = append(out, *contact)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	contact, ok := m.contacts[id]
	if !ok {
		return ErrNotFound
	}
	if status, ok := updates["status"]; ok {
		contact.Status = Status(status.(string))
	}
	if first, ok := updates["first_name"]; ok {
		contact.FirstName = first.(string)
	}
	if preparer, ok := updates["assigned_preparer_id"]; ok {
		v := preparer.(int64)
		contact.AssignedPreparerID = &v
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func seed(repo *mockRepository) {
	repo.contacts[1] = &Contact{ID: 1, FirstName: "Amy", LastName: "Reyes", AssignedPreparerID: ptr(int64(100)), Status: StatusActive}
	repo.contacts[2] = &Contact{ID: 2, FirstName: "Ben", LastName: "Okafor", AssignedPreparerID: ptr(int64(200)), Status: StatusActive}
	repo.contacts[3] = &Contact{ID: 3, FirstName: "Cara", LastName: "Singh", Status: StatusLead}
	repo.nextID = 4
}

func TestListScopesPreparerToOwnBook(t *testing.T) {
	repo := newMockRepository()
	seed(repo)
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	list, total, err := service.List(context.Background(), preparer, ListContactsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	admin := Viewer{UserID: 1, Role: permissions.RoleAdmin}
	_, total, err = service.List(context.Background(), admin, ListContactsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "admins see the full book")
}

func TestGetOutsideScopeReadsAsNotFound(t *testing.T) {
	repo := newMockRepository()
	seed(repo)
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	_, err := service.Get(context.Background(), preparer, 2)
	assert.ErrorIs(t, err, ErrNotFound, "another preparer's contact must not leak, even its existence")

	contact, err := service.Get(context.Background(), preparer, 1)
	require.NoError(t, err)
	assert.Equal(t, "Amy", contact.FirstName)
}

func TestCreatePinsPreparerAssignment(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	contact, err := service.Create(context.Background(), preparer, CreateContactRequest{
		FirstName:          "dana",
		LastName:           "WHITFIELD",
		AssignedPreparerID: ptr(int64(999)), // ignored for preparers
	})
	require.NoError(t, err)
	require.NotNil(t, contact.AssignedPreparerID)
	assert.Equal(t, int64(100), *contact.AssignedPreparerID)
	assert.Equal(t, "Dana", contact.FirstName)
	assert.Equal(t, "Whitfield", contact.LastName)

	admin := Viewer{UserID: 1, Role: permissions.RoleSuperAdmin}
	assigned, err := service.Create(context.Background(), admin, CreateContactRequest{
		FirstName:          "Eli",
		LastName:           "Tran",
		AssignedPreparerID: ptr(int64(200)),
	})
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedPreparerID)
	assert.Equal(t, int64(200), *assigned.AssignedPreparerID)
}

func TestUpdateRespectsScope(t *testing.T) {
	repo := newMockRepository()
	seed(repo)
	service := NewService(repo)

	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	_, err := service.Update(context.Background(), preparer, 2, UpdateContactRequest{FirstName: ptr("Hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)

	// Preparers cannot reassign their contacts away.
	updated, err := service.Update(context.Background(), preparer, 1, UpdateContactRequest{
		FirstName:          ptr("amy"),
		AssignedPreparerID: ptr(int64(200)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Amy", updated.FirstName)
	require.NotNil(t, updated.AssignedPreparerID)
	assert.Equal(t, int64(100), *updated.AssignedPreparerID)
}

func TestDeleteRespectsScope(t *testing.T) {
	repo := newMockRepository()
	seed(repo)
	service := NewService(repo)

	preparer := Viewer{UserID: 200, Role: permissions.RoleTaxPreparer}
	assert.ErrorIs(t, service.Delete(context.Background(), preparer, 1), ErrNotFound)
	require.NoError(t, service.Delete(context.Background(), preparer, 2))
	_, err := repo.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
