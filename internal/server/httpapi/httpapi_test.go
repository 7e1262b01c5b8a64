package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/auth"
	"github.com/mgallardo/freightdeck/internal/server/repositories/entities"
	"github.com/mgallardo/freightdeck/internal/server/service"
)

func newTestServer(t *testing.T, secret []byte) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.New(entities.NewMemory(), logging.Nop())
	srv := httptest.NewServer(New(svc, secret, logging.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

// The console's own HTTP client is the contract here: a full create, fetch,
// update, delete cycle must round-trip through the server unchanged.
func TestAPI_RoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)
	client := api.NewHTTPClient(srv.URL, nil)
	ctx := context.Background()

	v0, err := client.Version(ctx)
	require.NoError(t, err)

	created, err := client.Create(ctx, entity.TypeVessel,
		map[string]any{"name": "Atlas", "code": "AT", "flag": "PA"})
	require.NoError(t, err)
	assert.Equal(t, entity.ID("1"), created.ID)
	assert.Equal(t, "Atlas", created.Name)
	assert.Equal(t, "AT", created.Attrs["code"])
	assert.NotEmpty(t, created.CreatedAt)

	v1, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v0+1, v1)

	snap, err := client.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1, snap.Version)
	require.Len(t, snap.ItemsByType[entity.TypeVessel], 1)
	for _, typ := range entity.AllTypes() {
		_, ok := snap.ItemsByType[typ]
		assert.True(t, ok, "snapshot must carry every type, missing %s", typ)
	}

	items, err := client.FetchByType(ctx, entity.TypeVessel)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	updated, err := client.Update(ctx, created.ID, map[string]any{"flag": "LR"})
	require.NoError(t, err)
	assert.Equal(t, "LR", updated.Attrs["flag"])
	assert.Equal(t, "AT", updated.Attrs["code"])

	require.NoError(t, client.Delete(ctx, created.ID))

	items, err = client.FetchByType(ctx, entity.TypeVessel)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAPI_Types(t *testing.T) {
	srv := newTestServer(t, nil)
	client := api.NewHTTPClient(srv.URL, nil)

	types, err := client.Types(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CONTAINER", "CONTAINER_TYPE", "VESSEL"}, types)
}

func TestAPI_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	client := api.NewHTTPClient(srv.URL, nil)

	_, err := client.Create(context.Background(), entity.TypeVessel, map[string]any{"code": "VX"})
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, []string{"Name is required"}, apiErr.Errors)
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestAPI_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	client := api.NewHTTPClient(srv.URL, nil)

	_, err := client.Update(context.Background(), "999", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	err = client.Delete(context.Background(), "999")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = client.FetchByType(context.Background(), entity.Type("WAREHOUSE"))
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestAPI_AuthRequired(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	srv := newTestServer(t, secret)
	ctx := context.Background()

	// No credential: rejected.
	anon := api.NewHTTPClient(srv.URL, nil)
	_, err := anon.Version(ctx)
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))

	// Wrong key: rejected.
	bad, err := auth.GenerateToken("console-1", []byte("other-key"), time.Minute)
	require.NoError(t, err)
	_, err = api.NewHTTPClient(srv.URL, api.StaticToken(bad)).Version(ctx)
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))

	// Valid token: accepted.
	good, err := auth.GenerateToken("console-1", secret, time.Minute)
	require.NoError(t, err)
	_, err = api.NewHTTPClient(srv.URL, api.StaticToken(good)).Version(ctx)
	assert.NoError(t, err)
}

func TestAPI_BadRequestBody(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/mantenedores", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
