package returns

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

type mockRepository struct {
	returns map[int64]*TaxReturn
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{returns: make(map[int64]*TaxReturn), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, ret TaxReturn) (int64, error) {
	for _, existing := range m.returns {
		if existing.ClientID == ret.ClientID && existing.TaxYear == ret.TaxYear {
			return 0, ErrDuplicateYear
		}
	}
	id := m.nextID
	m.nextID++
	ret.ID = id
	m.returns[id] = &ret
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*TaxReturn, error) {
	ret, ok := m.returns[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *ret
	return &clone, nil
}

func (m *mockRepository) List(ctx context.Context, filter Filter) ([]TaxReturn, int, error) {
	var out []TaxReturn
	for _, ret := range m.returns {
		if filter.ClientID != nil && ret.ClientID != *filter.ClientID {
			continue
		}
		if filter.PreparerID != nil && ret.PreparerID != *filter.PreparerID {
			continue
		}
		if filter.Status != nil && ret.Status != *filter.Status {
			continue
		}
		out = append(out, *ret)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	ret, ok := m.returns[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		ret.Status = Status(v.(string))
	}
	if v, ok := updates["filed_at"]; ok {
		at := v.(time.Time)
		ret.FiledAt = &at
	}
	if v, ok := updates["notes"]; ok {
		notes := v.(string)
		ret.Notes = &notes
	}
	return nil
}

func TestPipelineHappyPath(t *testing.T) {
	service := NewService(newMockRepository())
	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}

	ret, err := service.Open(context.Background(), preparer, 500, 0, 2025, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusIntake, ret.Status)
	assert.Equal(t, int64(100), ret.PreparerID, "preparers open returns onto their own workload")

	for _, stage := range []Status{StatusInReview, StatusReadyFile, StatusFiled} {
		ret, err = service.Transition(context.Background(), preparer, ret.ID, stage, nil)
		require.NoError(t, err)
		assert.Equal(t, stage, ret.Status)
	}
	require.NotNil(t, ret.FiledAt)
}

func TestTransitionRejectsSkipsAndFinalStates(t *testing.T) {
	service := NewService(newMockRepository())
	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}

	ret, err := service.Open(context.Background(), preparer, 500, 0, 2025, nil)
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), preparer, ret.ID, StatusFiled, nil)
	assert.ErrorIs(t, err, ErrBadTransition, "intake cannot jump straight to filed")

	_, err = service.Transition(context.Background(), preparer, ret.ID, Status("shredded"), nil)
	assert.ErrorIs(t, err, ErrBadTransition)

	ret, err = service.Transition(context.Background(), preparer, ret.ID, StatusInReview, nil)
	require.NoError(t, err)
	ret, err = service.Transition(context.Background(), preparer, ret.ID, StatusRejected, nil)
	require.NoError(t, err)

	// Rejected loops back to review.
	ret, err = service.Transition(context.Background(), preparer, ret.ID, StatusInReview, nil)
	require.NoError(t, err)
	ret, err = service.Transition(context.Background(), preparer, ret.ID, StatusReadyFile, nil)
	require.NoError(t, err)
	ret, err = service.Transition(context.Background(), preparer, ret.ID, StatusFiled, nil)
	require.NoError(t, err)

	_, err = service.Transition(context.Background(), preparer, ret.ID, StatusInReview, nil)
	assert.ErrorIs(t, err, ErrBadTransition, "filed is final")
}

func TestDuplicateYearRejected(t *testing.T) {
	service := NewService(newMockRepository())
	preparer := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}

	_, err := service.Open(context.Background(), preparer, 500, 0, 2025, nil)
	require.NoError(t, err)
	_, err = service.Open(context.Background(), preparer, 500, 0, 2025, nil)
	assert.ErrorIs(t, err, ErrDuplicateYear)

	_, err = service.Open(context.Background(), preparer, 500, 0, 2024, nil)
	assert.NoError(t, err)
}

func TestScopes(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)
	alice := Viewer{UserID: 100, Role: permissions.RoleTaxPreparer}
	bob := Viewer{UserID: 200, Role: permissions.RoleTaxPreparer}

	ret, err := service.Open(context.Background(), alice, 500, 0, 2025, nil)
	require.NoError(t, err)

	_, err = service.Get(context.Background(), bob, ret.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	client := Viewer{UserID: 500, Role: permissions.RoleClient}
	got, err := service.Get(context.Background(), client, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, ret.ID, got.ID, "clients see their own return")

	otherClient := Viewer{UserID: 600, Role: permissions.RoleClient}
	_, err = service.Get(context.Background(), otherClient, ret.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, total, err := service.List(context.Background(), client, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	admin := Viewer{UserID: 1, Role: permissions.RoleAdmin}
	adminPicked := int64(777)
	opened, err := service.Open(context.Background(), admin, 501, adminPicked, 2025, nil)
	require.NoError(t, err)
	assert.Equal(t, adminPicked, opened.PreparerID, "admins assign any preparer")
}
