package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/client/cache"
	"github.com/mgallardo/freightdeck/internal/client/drawer"
	"github.com/mgallardo/freightdeck/internal/client/schema"
	"github.com/mgallardo/freightdeck/internal/entity"
	"github.com/mgallardo/freightdeck/internal/logging"
)

type memRepo struct {
	snap *entity.Snapshot
}

func (m *memRepo) Load(ctx context.Context) (*entity.Snapshot, error) { return m.snap, nil }
func (m *memRepo) Save(ctx context.Context, snap *entity.Snapshot) error {
	m.snap = snap
	return nil
}
func (m *memRepo) Clear(ctx context.Context) error { m.snap = nil; return nil }

type fakeAPI struct {
	version int64
	items   map[entity.Type][]entity.Entity
	nextID  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		version: 1,
		items: map[entity.Type][]entity.Entity{
			entity.TypeContainerType: {{ID: "1", Name: "Dry"}},
		},
		nextID: 2,
	}
}

func (f *fakeAPI) Version(ctx context.Context) (int64, error) { return f.version, nil }

func (f *fakeAPI) FetchAll(ctx context.Context) (*entity.Snapshot, error) {
	snap := &entity.Snapshot{Version: f.version, ItemsByType: map[entity.Type][]entity.Entity{}}
	for t, items := range f.items {
		snap.ItemsByType[t] = append([]entity.Entity{}, items...)
	}
	snap.Normalize()
	return snap, nil
}

func (f *fakeAPI) FetchByType(ctx context.Context, t entity.Type) ([]entity.Entity, error) {
	return f.items[t], nil
}

func (f *fakeAPI) Types(ctx context.Context) ([]string, error) {
	return []string{"CONTAINER", "CONTAINER_TYPE", "VESSEL"}, nil
}

func (f *fakeAPI) Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error) {
	name, _ := attrs["name"].(string)
	item := entity.Entity{
		ID:    entity.ID(fmt.Sprintf("%d", f.nextID)),
		Name:  name,
		Attrs: map[string]any{},
	}
	for k, v := range attrs {
		if k != "name" {
			item.Attrs[k] = v
		}
	}
	f.nextID++
	f.version++
	f.items[t] = append(f.items[t], item)
	return &item, nil
}

func (f *fakeAPI) Update(ctx context.Context, id entity.ID, attrs map[string]any) (*entity.Entity, error) {
	for t := range f.items {
		for i := range f.items[t] {
			if f.items[t][i].ID != id {
				continue
			}
			if name, ok := attrs["name"].(string); ok {
				f.items[t][i].Name = name
			}
			for k, v := range attrs {
				if k == "name" {
					continue
				}
				if f.items[t][i].Attrs == nil {
					f.items[t][i].Attrs = map[string]any{}
				}
				f.items[t][i].Attrs[k] = v
			}
			f.version++
			item := f.items[t][i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeAPI) Delete(ctx context.Context, id entity.ID) error {
	for t := range f.items {
		for i := range f.items[t] {
			if f.items[t][i].ID == id {
				f.items[t] = append(f.items[t][:i], f.items[t][i+1:]...)
				f.version++
				return nil
			}
		}
	}
	return fmt.Errorf("not found")
}

var _ api.Client = (*fakeAPI)(nil)

func newTestApp(t *testing.T, apiClient api.Client, input string) *App {
	t.Helper()

	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	log := logging.Nop()
	return &App{
		log:       log,
		tokens:    &sessionToken{},
		api:       apiClient,
		snapshots: &memRepo{},
		store:     cache.New(context.Background(), apiClient, &memRepo{}, log),
		stack:     drawer.NewManager(),
		registry:  schema.Default(),
		reader:    bufio.NewReader(strings.NewReader(input)),
	}
}

// The full nested flow: creating a container, choosing "Add New" in the
// container-type dropdown, completing the nested drawer, and ending with the
// fresh container type auto-selected into the parent form.
func TestCreate_NestedDrawerAutoSelects(t *testing.T) {
	fake := newFakeAPI()

	input := strings.Join([]string{
		"Box A", // container name
		"",      // dropdown filter: show all
		"2",     // options are [Dry, Add New]; pick Add New
		"Reefer", // nested: container type name
		"RF",     // nested: code
		"cold storage", // nested: description (multiline)
		"",             // end multiline
		"C1", // back in parent: code
		"42", // capacity
	}, "\n") + "\n"

	app := newTestApp(t, fake, input)
	require.NoError(t, app.store.Load(context.Background(), false))
	require.NoError(t, app.Create(context.Background(), "CONTAINER"))

	// Everything resolved, nothing left open.
	assert.Empty(t, app.stack.Stack())

	types := app.store.ItemsByType(entity.TypeContainerType)
	require.Len(t, types, 2)
	assert.Equal(t, "Reefer", types[1].Name)
	assert.Equal(t, "RF", types[1].Attrs["code"])

	containers := app.store.ItemsByType(entity.TypeContainer)
	require.Len(t, containers, 1)
	assert.Equal(t, "Box A", containers[0].Name)
	// The nested creation's result was selected into the reference field.
	assert.Equal(t, string(types[1].ID), containers[0].Attrs["containerTypeId"])
	assert.Equal(t, 42.0, containers[0].Attrs["capacity"])
}

// The "create with this text" path: a filter query with no exact match offers
// a synthetic option that seeds the nested drawer's name field.
func TestCreate_CreateWithTextPrefillsName(t *testing.T) {
	fake := newFakeAPI()

	input := strings.Join([]string{
		"Box B", // container name
		"Ree",   // dropdown filter: no match
		"1",     // options are [Create "Ree", Add New]; pick the first
		"RE",    // nested: code (name is prefilled, not prompted)
		"",      // nested: description empty
		"",      // parent: code empty
		"",      // capacity empty
	}, "\n") + "\n"

	app := newTestApp(t, fake, input)
	require.NoError(t, app.store.Load(context.Background(), false))
	require.NoError(t, app.Create(context.Background(), "CONTAINER"))

	types := app.store.ItemsByType(entity.TypeContainerType)
	require.Len(t, types, 2)
	assert.Equal(t, "Ree", types[1].Name)

	containers := app.store.ItemsByType(entity.TypeContainer)
	require.Len(t, containers, 1)
	assert.Equal(t, string(types[1].ID), containers[0].Attrs["containerTypeId"])
	_, hasCapacity := containers[0].Attrs["capacity"]
	assert.False(t, hasCapacity, "empty optional number must be omitted")
}

// A drawer for a type without a registered schema renders nothing and closes.
func TestCreate_UnknownTypeRejected(t *testing.T) {
	app := newTestApp(t, newFakeAPI(), "")
	err := app.Create(context.Background(), "WAREHOUSE")
	require.Error(t, err)
	assert.Empty(t, app.stack.Stack())
}

func TestDelete_Confirmed(t *testing.T) {
	fake := newFakeAPI()

	input := strings.Join([]string{
		"CONTAINER_TYPE", // type prompt
		"1",              // id prompt
		"y",              // confirm
	}, "\n") + "\n"

	app := newTestApp(t, fake, input)
	require.NoError(t, app.store.Load(context.Background(), false))
	require.NoError(t, app.Delete(context.Background()))

	assert.Empty(t, app.store.ItemsByType(entity.TypeContainerType))
	assert.Empty(t, app.stack.Stack())
}

func TestDelete_Declined(t *testing.T) {
	fake := newFakeAPI()

	input := strings.Join([]string{
		"CONTAINER_TYPE",
		"1",
		"n",
	}, "\n") + "\n"

	app := newTestApp(t, fake, input)
	require.NoError(t, app.store.Load(context.Background(), false))
	require.NoError(t, app.Delete(context.Background()))

	assert.Len(t, app.store.ItemsByType(entity.TypeContainerType), 1)
}

func TestEdit_UpdatesAttributes(t *testing.T) {
	fake := newFakeAPI()

	input := strings.Join([]string{
		"CONTAINER_TYPE", // type
		"1",              // id
		"name=Open Top",  // attribute lines
		"code=OT",
		"", // end attributes
	}, "\n") + "\n"

	app := newTestApp(t, fake, input)
	require.NoError(t, app.store.Load(context.Background(), false))
	require.NoError(t, app.Edit(context.Background()))

	item := app.store.ItemByID(entity.TypeContainerType, "1")
	require.NotNil(t, item)
	assert.Equal(t, "Open Top", item.Name)
	assert.Equal(t, "OT", item.Attrs["code"])
}
