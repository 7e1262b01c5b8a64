package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mgallardo/freightdeck/internal/client/drawer"
	"github.com/mgallardo/freightdeck/internal/client/form"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// List prints cached entities. With a type argument it prints that collection;
// without one it prints every registered type, each under a header.
func (a *App) List(ctx context.Context, typeName string) error {
	types := entity.AllTypes()
	if typeName != "" {
		t, err := entity.ParseType(typeName)
		if err != nil {
			printlnFn(err.Error())
			return err
		}
		types = []entity.Type{t}
	}

	for _, t := range types {
		items := a.store.ItemsByType(t)
		printlnFn(fmt.Sprintf("%s (%d)", t, len(items)))
		for _, item := range items {
			printlnFn(fmt.Sprintf("  %-12s %s", item.ID, item.Name))
		}
	}
	return nil
}

// Show fetches and displays a single entity by ID, searching every type. The
// ID is prompted interactively; "5" and 5 refer to the same entity.
func (a *App) Show(ctx context.Context) error {
	raw, err := GetSimpleText(a.reader, "Enter entity id to show", os.Stdout)
	if err != nil {
		return err
	}
	id := entity.ID(raw)

	for _, t := range entity.AllTypes() {
		item := a.store.ItemByID(t, id)
		if item == nil {
			continue
		}
		printlnFn(fmt.Sprintf("%s %s", t, item.ID))
		printlnFn(fmt.Sprintf("Name: %s", item.Name))
		if item.CreatedAt != "" {
			printlnFn(fmt.Sprintf("Created: %s", item.CreatedAt))
		}
		if item.UpdatedAt != "" {
			printlnFn(fmt.Sprintf("Updated: %s", item.UpdatedAt))
		}
		keys := make([]string, 0, len(item.Attrs))
		for k := range item.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			printlnFn(fmt.Sprintf("%s: %v", k, item.Attrs[k]))
		}
		return nil
	}

	printlnFn("No entity with id", raw)
	return nil
}

// Create opens the creation drawer for a type and drives the overlay stack
// until every drawer (including nested ones) is resolved.
func (a *App) Create(ctx context.Context, typeName string) error {
	if typeName == "" {
		raw, err := GetSimpleText(a.reader, typePrompt(), os.Stdout)
		if err != nil {
			return err
		}
		typeName = raw
	}

	t, err := entity.ParseType(typeName)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.stack.Open(form.DrawerID(t), drawer.EntityCreate{Type: t})
	a.runOverlays(ctx)
	return nil
}

// Edit prompts for a type, an id, and attribute lines, then applies the
// update through the cache so the local collection reflects it immediately.
func (a *App) Edit(ctx context.Context) error {
	t, item, err := a.promptEntity(ctx)
	if err != nil || item == nil {
		return err
	}

	lines, err := GetAttributes(a.reader, os.Stdout)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		printlnFn("Nothing to update.")
		return nil
	}

	attrs := make(map[string]any, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			printlnFn("Skipping malformed line:", line)
			continue
		}
		attrs[strings.TrimSpace(name)] = coerceAttr(strings.TrimSpace(value))
	}

	updated, err := a.store.Update(ctx, t, item.ID, attrs)
	if err != nil {
		a.log.Error(ctx, "update failed", "type", t, "id", item.ID, "error", err)
		printlnFn("Update failed:", userMessage(err))
		return err
	}
	printlnFn(fmt.Sprintf("Updated %s %s", t, updated.ID))
	return nil
}

// Delete prompts for a type and an id and opens a confirmation overlay before
// removing the entity.
func (a *App) Delete(ctx context.Context) error {
	t, item, err := a.promptEntity(ctx)
	if err != nil || item == nil {
		return err
	}

	id := item.ID
	a.stack.Open(fmt.Sprintf("confirm-delete-%s", id), drawer.Confirm{
		Prompt: fmt.Sprintf("Delete %s %q?", t, item.Name),
		OnConfirm: func() {
			if err := a.store.Delete(ctx, t, id); err != nil {
				a.log.Error(ctx, "delete failed", "type", t, "id", id, "error", err)
				printlnFn("Delete failed:", userMessage(err))
				return
			}
			printlnFn("Deleted.")
		},
	})
	a.runOverlays(ctx)
	return nil
}

// Refresh forces a full reconciliation with the server, bypassing the version
// cheap path.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.store.Refresh(ctx); err != nil {
		printlnFn("Refresh failed:", userMessage(err))
		return err
	}
	if v, ok := a.store.Version(); ok {
		printlnFn(fmt.Sprintf("Refreshed. Local version is now %d.", v))
	}
	return nil
}

// Version prints the local cache version next to the server's current one, so
// drift is visible without forcing a refresh.
func (a *App) Version(ctx context.Context) error {
	if v, ok := a.store.Version(); ok {
		printlnFn(fmt.Sprintf("Local version:  %d", v))
	} else {
		printlnFn("Local version:  none (cache empty)")
	}

	remote, err := a.api.Version(ctx)
	if err != nil {
		printlnFn("Server version: unavailable:", userMessage(err))
		return err
	}
	printlnFn(fmt.Sprintf("Server version: %d", remote))
	return nil
}

// Types prints the entity types the server supports.
func (a *App) Types(ctx context.Context) error {
	types, err := a.api.Types(ctx)
	if err != nil {
		printlnFn("Could not fetch types:", userMessage(err))
		return err
	}
	for _, t := range types {
		printlnFn(t)
	}
	return nil
}

// Token reads a new bearer token without echo and installs it for subsequent
// API calls.
func (a *App) Token(ctx context.Context) error {
	secret, err := GetSecret("Enter bearer token", os.Stdout)
	if err != nil {
		return err
	}
	a.tokens.Set(string(secret))
	printlnFn("Token updated.")
	return nil
}

// ClearCache drops the persisted snapshot. The in-memory collections survive
// until the program exits; the next start refetches from scratch.
func (a *App) ClearCache(ctx context.Context) error {
	if err := a.snapshots.Clear(ctx); err != nil {
		printlnFn("Clear failed:", err.Error())
		return err
	}
	printlnFn("Local snapshot cleared.")
	return nil
}

// promptEntity asks for a type and an id and resolves them against the cache.
// A nil entity with nil error means the lookup simply found nothing.
func (a *App) promptEntity(ctx context.Context) (entity.Type, *entity.Entity, error) {
	raw, err := GetSimpleText(a.reader, typePrompt(), os.Stdout)
	if err != nil {
		return "", nil, err
	}
	t, err := entity.ParseType(raw)
	if err != nil {
		printlnFn(err.Error())
		return "", nil, err
	}

	rawID, err := GetSimpleText(a.reader, "Enter entity id", os.Stdout)
	if err != nil {
		return "", nil, err
	}

	item := a.store.ItemByID(t, entity.ID(rawID))
	if item == nil {
		printlnFn("No", string(t), "with id", rawID)
		return t, nil, nil
	}
	return t, item, nil
}

// typePrompt lists the valid type names in the prompt itself.
func typePrompt() string {
	names := make([]string, 0, len(entity.AllTypes()))
	for _, t := range entity.AllTypes() {
		names = append(names, string(t))
	}
	return fmt.Sprintf("Enter entity type (%s)", strings.Join(names, ", "))
}

// coerceAttr maps raw attribute text onto the closest JSON-ish value: bools
// and numbers are recognized, everything else stays a string.
func coerceAttr(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
