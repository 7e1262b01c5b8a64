package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) List(ctx context.Context, typeName string) error {
	f.calls = append(f.calls, "list "+typeName)
	return nil
}
func (f *fakeExec) Show(ctx context.Context) error { f.calls = append(f.calls, "show"); return nil }
func (f *fakeExec) Create(ctx context.Context, typeName string) error {
	f.calls = append(f.calls, "create "+typeName)
	return nil
}
func (f *fakeExec) Edit(ctx context.Context) error   { f.calls = append(f.calls, "edit"); return nil }
func (f *fakeExec) Delete(ctx context.Context) error { f.calls = append(f.calls, "delete"); return nil }
func (f *fakeExec) Refresh(ctx context.Context) error {
	f.calls = append(f.calls, "refresh")
	return nil
}
func (f *fakeExec) Version(ctx context.Context) error {
	f.calls = append(f.calls, "version")
	return nil
}
func (f *fakeExec) Types(ctx context.Context) error { f.calls = append(f.calls, "types"); return nil }
func (f *fakeExec) Token(ctx context.Context) error { f.calls = append(f.calls, "token"); return nil }
func (f *fakeExec) ClearCache(ctx context.Context) error {
	f.calls = append(f.calls, "clearcache")
	return nil
}

func TestRunREPL_CommandsAndArgs(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list",
		"l CONTAINER",
		"create VESSEL",
		"show",
		"refresh",
		"version",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"list ", "list CONTAINER", "create VESSEL", "show", "refresh", "version"}
	if len(exec.calls) != len(wantOrder) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, wantOrder)
	}
	for i, c := range exec.calls {
		if c != wantOrder[i] {
			t.Fatalf("call %d: got %q, want %q", i, c, wantOrder[i])
		}
	}
}

func TestRunREPL_QuitWithoutCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n   \nquit\n")
	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
