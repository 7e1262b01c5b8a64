package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mgallardo/freightdeck/internal/client/api"
	"github.com/mgallardo/freightdeck/internal/client/drawer"
	"github.com/mgallardo/freightdeck/internal/client/form"
	"github.com/mgallardo/freightdeck/internal/client/schema"
	"github.com/mgallardo/freightdeck/internal/common"
)

// openForm pairs a live form with the set of fields already presented, so a
// drawer interrupted by a nested creation flow resumes where it left off
// instead of re-prompting filled fields.
type openForm struct {
	form  *form.Form
	asked map[string]bool
}

// runOverlays drains the drawer stack: it repeatedly takes the topmost open
// drawer and drives its interaction until the stack is empty. A dropdown's
// "Add New" pushes a nested drawer on top; the host then serves that drawer
// first and resumes the parent afterwards, with the created entity already
// selected into the originating field.
func (a *App) runOverlays(ctx context.Context) {
	forms := make(map[string]*openForm)

	for {
		id, ok := a.stack.Top()
		if !ok {
			return
		}
		cfg, ok := a.stack.Config(id)
		if !ok {
			a.stack.Close(id)
			continue
		}

		switch c := cfg.(type) {
		case drawer.EntityCreate:
			a.runEntityDrawer(ctx, id, c, forms)
		case drawer.Confirm:
			a.runConfirmDrawer(ctx, id, c)
		default:
			a.stack.Close(id)
		}
	}
}

// runEntityDrawer serves one pass over an entity-creation drawer: prompt the
// not-yet-asked fields, then submit. It returns early when a nested drawer is
// pushed, leaving its own form state in place for the resume.
func (a *App) runEntityDrawer(ctx context.Context, id string, cfg drawer.EntityCreate, forms map[string]*openForm) {
	state, ok := forms[id]
	if !ok {
		f, ok := form.New(id, cfg, a.registry, a.store, a.stack, a.log)
		if !ok {
			printlnFn("No form is available for type", string(cfg.Type))
			a.stack.Close(id)
			return
		}
		state = &openForm{form: f, asked: make(map[string]bool)}
		for _, field := range f.Fields() {
			// Prefilled values (the "create with this text" path) are kept,
			// not re-prompted. Checkboxes are never considered prefilled.
			if field.Type != schema.FieldCheckbox && !f.Value(field.Name).IsEmpty() {
				state.asked[field.Name] = true
			}
		}
		forms[id] = state

		depth := a.stack.ZIndex(id)
		printlnFn(fmt.Sprintf("--- %s [z=%d] ---", f.Title(), depth))
		if f.Description() != "" {
			printlnFn(f.Description())
		}
	}

	f := state.form
	for _, field := range f.Fields() {
		if state.asked[field.Name] && f.FieldError(field.Name) == "" {
			continue
		}
		if err := a.promptField(ctx, state, field); err != nil {
			a.stack.Close(id)
			delete(forms, id)
			return
		}
		state.asked[field.Name] = true

		// A nested drawer was pushed; serve it before continuing here.
		if top, _ := a.stack.Top(); top != id {
			return
		}
	}

	created, ok := f.Submit(ctx)
	if ok {
		printlnFn(fmt.Sprintf("Created %s %q (id %s)", f.Type(), created.Name, created.ID))
		delete(forms, id)
		return
	}

	for _, field := range f.Fields() {
		if msg := f.FieldError(field.Name); msg != "" {
			printlnFn(msg)
		}
	}
	if msg := f.SubmitError(); msg != "" {
		printlnFn(msg)
		retry, err := GetSimpleText(a.reader, "Retry? (y/n)", os.Stdout)
		if err != nil || !strings.EqualFold(retry, "y") {
			a.stack.Close(id)
			delete(forms, id)
		}
	}
}

// promptField collects one field's value from the terminal.
func (a *App) promptField(ctx context.Context, state *openForm, field schema.Field) error {
	f := state.form
	label := field.Label
	if field.Required {
		label += " (required)"
	}
	if field.Placeholder != "" {
		label += " [" + field.Placeholder + "]"
	}

	switch field.Type {
	case schema.FieldTextarea:
		text, err := GetMultiline(a.reader, label, os.Stdout)
		if err != nil {
			return err
		}
		f.Set(field.Name, form.Text(text))

	case schema.FieldNumber:
		raw, err := GetSimpleText(a.reader, label, os.Stdout)
		if err != nil {
			return err
		}
		if raw == "" {
			f.Set(field.Name, form.Number(nil))
			return nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			printlnFn("Not a number, leaving empty.")
			f.Set(field.Name, form.Number(nil))
			return nil
		}
		f.Set(field.Name, form.Number(&n))

	case schema.FieldCheckbox:
		raw, err := GetSimpleText(a.reader, label+" (y/n)", os.Stdout)
		if err != nil {
			return err
		}
		f.Set(field.Name, form.Bool(strings.EqualFold(raw, "y") || strings.EqualFold(raw, "yes")))

	case schema.FieldDropdown:
		return a.promptDropdown(ctx, state, field)

	default:
		raw, err := GetSimpleText(a.reader, label, os.Stdout)
		if err != nil {
			return err
		}
		f.Set(field.Name, form.Text(raw))
	}
	return nil
}

// promptDropdown renders the selector for a reference field as a numbered
// list. Choosing a creation affordance pushes a nested drawer and leaves the
// field to be filled by its success callback.
func (a *App) promptDropdown(ctx context.Context, state *openForm, field schema.Field) error {
	dd := state.form.Dropdown(field)

	query, err := GetSimpleText(a.reader, field.Label+" (type to filter, Enter for all)", os.Stdout)
	if err != nil {
		return err
	}

	options := dd.Options(query)
	if len(options) == 0 {
		printlnFn("No options available.")
		return nil
	}
	if dd.Disabled() {
		printlnFn(dd.PlaceholderText())
	}
	for i, opt := range options {
		printlnFn(fmt.Sprintf("  %d) %s", i+1, opt.Label()))
	}

	raw, err := GetSimpleText(a.reader, "Select an option by number (Enter to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(options) {
		printlnFn("Invalid selection, leaving empty.")
		return nil
	}

	dd.Select(options[n-1])
	return nil
}

// runConfirmDrawer serves a yes/no confirmation overlay.
func (a *App) runConfirmDrawer(ctx context.Context, id string, cfg drawer.Confirm) {
	answer, err := GetSimpleText(a.reader, cfg.Prompt+" (y/n)", os.Stdout)
	a.stack.Close(id)
	if err != nil {
		return
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		if cfg.OnConfirm != nil {
			cfg.OnConfirm()
		}
	}
}

// userMessage renders an error for the terminal: the server's structured
// message when there is one, a friendly note for connectivity problems, and
// the raw error otherwise.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, common.ErrorUnavailable) {
		return "Server unavailable. Please try again."
	}
	return err.Error()
}
