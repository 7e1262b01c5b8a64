package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/repositories/entities"
)

func newService() *Service {
	return New(entities.NewMemory(), logging.Nop())
}

func TestCreate_RequiresName(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), entity.TypeVessel, map[string]any{"code": "VX"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Name is required"}, verr.Messages)
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), entity.Type("WAREHOUSE"), map[string]any{"name": "x"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	svc := newService()

	created, err := svc.Create(context.Background(), entity.TypeVessel,
		map[string]any{"name": "Atlas", "code": "AT", "type": "VESSEL"})
	require.NoError(t, err)

	assert.Equal(t, entity.ID("1"), created.ID)
	assert.Equal(t, "Atlas", created.Name)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, "AT", created.Attrs["code"])
	// The routing discriminator is not stored as data.
	_, hasType := created.Attrs["type"]
	assert.False(t, hasType)
}

func TestMutations_AdvanceVersionByOne(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	v0, err := svc.Version(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, entity.TypeVessel, map[string]any{"name": "Atlas"})
	require.NoError(t, err)

	v1, err := svc.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v0+1, v1)

	_, err = svc.Update(ctx, created.ID, map[string]any{"flag": "PA"})
	require.NoError(t, err)

	v2, err := svc.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1+1, v2)

	require.NoError(t, svc.Delete(ctx, created.ID))

	v3, err := svc.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2+1, v3)
}

func TestUpdate_MergesAttributes(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, entity.TypeVessel, map[string]any{"name": "Atlas", "code": "AT"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, map[string]any{"flag": "PA"})
	require.NoError(t, err)

	assert.Equal(t, "Atlas", updated.Name)
	assert.Equal(t, "AT", updated.Attrs["code"], "untouched attributes survive")
	assert.Equal(t, "PA", updated.Attrs["flag"])
}

func TestUpdate_RejectsEmptyName(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, entity.TypeVessel, map[string]any{"name": "Atlas"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, map[string]any{"name": "   "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newService()

	_, err := svc.Update(context.Background(), "999", map[string]any{"name": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDelete_NotFound(t *testing.T) {
	svc := newService()

	err := svc.Delete(context.Background(), "999")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSnapshot_TypeComplete(t *testing.T) {
	svc := newService()

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	for _, typ := range entity.AllTypes() {
		items, ok := snap.ItemsByType[typ]
		require.True(t, ok, "missing collection for %s", typ)
		assert.NotNil(t, items)
	}
}

func TestListByType_UnknownIsNotFound(t *testing.T) {
	svc := newService()

	_, err := svc.ListByType(context.Background(), entity.Type("WAREHOUSE"))
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}
