package plugin

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/driad/internal/plugin/capability"
	plua "github.com/dshills/driad/internal/plugin/lua"
)

func newTestHost(t *testing.T, opts ...HostOption) (*Host, *plua.State) {
	t.Helper()
	engine := plua.NewState()
	host, err := NewHost(engine, opts...)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	t.Cleanup(func() { host.Close() })
	return host, engine
}

// recordingScript appends tag to the global "order" when init runs.
func recordingScript(tag string, fail bool) string {
	ret := "true"
	if fail {
		ret = `false, "refused"`
	}
	return fmt.Sprintf(`
		return {
			init = function()
				order = (order or "") .. %q
				return %s
			end,
		}
	`, tag, ret)
}

func orderOf(engine *plua.State) string {
	return engine.GetGlobal("order").String()
}

func TestNewHost(t *testing.T) {
	host, engine := newTestHost(t)

	if host.State() != StateEmpty {
		t.Errorf("State() = %v, want %v", host.State(), StateEmpty)
	}
	if host.Len() != 0 {
		t.Errorf("Len() = %d, want 0", host.Len())
	}
	if host.Engine() != engine {
		t.Error("Engine() returned wrong engine")
	}
}

func TestNewHostNilEngine(t *testing.T) {
	if _, err := NewHost(nil); !errors.Is(err, ErrNilEngine) {
		t.Errorf("NewHost(nil) error = %v, want ErrNilEngine", err)
	}
}

func TestHostRegister(t *testing.T) {
	host, _ := newTestHost(t)
	root := t.TempDir()

	dir := writePackage(t, root, "a", manifestFor("a"), "return {}")
	ok, err := host.Register(dir)
	if !ok || err != nil {
		t.Fatalf("Register() = %v, %v", ok, err)
	}
	if host.State() != StateRegistered {
		t.Errorf("State() = %v, want %v", host.State(), StateRegistered)
	}
	if host.Len() != 1 {
		t.Errorf("Len() = %d, want 1", host.Len())
	}
}

func TestHostRegisterFailureLeavesCollection(t *testing.T) {
	host, _ := newTestHost(t)
	root := t.TempDir()

	bad := writePackage(t, root, "bad", "", "return {}")
	ok, err := host.Register(bad)
	if ok || !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("Register() = %v, %v; want false, ErrManifestNotFound", ok, err)
	}
	if host.Len() != 0 || host.State() != StateEmpty {
		t.Errorf("after failed Register: Len() = %d, State() = %v", host.Len(), host.State())
	}
}

func TestHostDuplicateNames(t *testing.T) {
	host, _ := newTestHost(t)
	root := t.TempDir()

	for _, name := range []string{"one", "two"} {
		dir := writePackage(t, root, name, manifestFor("same"), "return {}")
		if ok, err := host.Register(dir); !ok || err != nil {
			t.Fatalf("Register(%s) = %v, %v", name, ok, err)
		}
	}

	plugins := host.Plugins()
	if len(plugins) != 2 {
		t.Fatalf("Len() = %d, want 2", len(plugins))
	}
	if plugins[0].ID() == plugins[1].ID() {
		t.Error("duplicate-name plugins share an ID")
	}
}

func TestHostInitializeOrder(t *testing.T) {
	host, engine := newTestHost(t)
	root := t.TempDir()

	for _, tag := range []string{"a", "b", "c"} {
		dir := writePackage(t, root, tag, manifestFor(tag), recordingScript(tag, false))
		if _, err := host.Register(dir); err != nil {
			t.Fatalf("Register(%s) error = %v", tag, err)
		}
	}

	ok, err := host.Initialize()
	if !ok || err != nil {
		t.Fatalf("Initialize() = %v, %v", ok, err)
	}
	if got := orderOf(engine); got != "abc" {
		t.Errorf("init order = %q, want %q", got, "abc")
	}
	if host.State() != StateRunning {
		t.Errorf("State() = %v, want %v", host.State(), StateRunning)
	}
}

func TestHostInitializeFailFast(t *testing.T) {
	host, engine := newTestHost(t)
	root := t.TempDir()

	scripts := []struct {
		tag  string
		fail bool
	}{{"a", false}, {"b", true}, {"c", false}}
	for _, s := range scripts {
		dir := writePackage(t, root, s.tag, manifestFor(s.tag), recordingScript(s.tag, s.fail))
		if _, err := host.Register(dir); err != nil {
			t.Fatalf("Register(%s) error = %v", s.tag, err)
		}
	}

	ok, err := host.Initialize()
	if ok {
		t.Fatal("Initialize() = true, want false")
	}

	var ierr *InitError
	if !errors.As(err, &ierr) {
		t.Fatalf("Initialize() error = %v, want *InitError", err)
	}
	if ierr.Plugin != "b" || ierr.Index != 1 {
		t.Errorf("InitError = %q #%d, want \"b\" #1", ierr.Plugin, ierr.Index)
	}
	if !errors.Is(err, capability.ErrInvocation) {
		t.Errorf("Initialize() error = %v, want ErrInvocation", err)
	}
	if got := orderOf(engine); got != "ab" {
		t.Errorf("init order = %q, want %q", got, "ab")
	}
	if host.State() != StateRegistered {
		t.Errorf("State() = %v, want %v", host.State(), StateRegistered)
	}
}

func TestHostInitializeRetryDoesNotRerun(t *testing.T) {
	good := &stubAPI{init: func() error { return nil }}
	calls := 0
	flaky := &stubAPI{init: func() error {
		calls++
		if calls == 1 {
			return errors.New("not yet")
		}
		return nil
	}}

	host, _ := newTestHost(t)
	host.Add(FromParts(Metadata{Name: "good"}, good))
	host.Add(FromParts(Metadata{Name: "flaky"}, flaky))

	if ok, _ := host.Initialize(); ok {
		t.Fatal("first Initialize() = true, want false")
	}
	if ok, err := host.Initialize(); !ok || err != nil {
		t.Fatalf("second Initialize() = %v, %v", ok, err)
	}
	if good.initRuns != 1 {
		t.Errorf("good init ran %d times, want 1", good.initRuns)
	}
	if flaky.initRuns != 2 {
		t.Errorf("flaky init ran %d times, want 2", flaky.initRuns)
	}
}

func TestHostInitializeTwice(t *testing.T) {
	host, engine := newTestHost(t)
	dir := writePackage(t, t.TempDir(), "a", manifestFor("a"), recordingScript("a", false))
	host.Register(dir)

	if ok, err := host.Initialize(); !ok || err != nil {
		t.Fatalf("Initialize() = %v, %v", ok, err)
	}
	if ok, err := host.Initialize(); ok || err != nil {
		t.Errorf("second Initialize() = %v, %v; want false, nil", ok, err)
	}
	if got := orderOf(engine); got != "a" {
		t.Errorf("init ran again: order = %q", got)
	}
}

func TestHostInitializeEmpty(t *testing.T) {
	host, _ := newTestHost(t)

	if ok, err := host.Initialize(); !ok || err != nil {
		t.Fatalf("Initialize() = %v, %v", ok, err)
	}
	if host.State() != StateRunning {
		t.Errorf("State() = %v, want %v", host.State(), StateRunning)
	}
}

func TestHostInitializeWithoutInit(t *testing.T) {
	host, _ := newTestHost(t)
	dir := writePackage(t, t.TempDir(), "a", manifestFor("a"), "return {}")
	host.Register(dir)

	if ok, err := host.Initialize(); !ok || err != nil {
		t.Errorf("Initialize() = %v, %v; want true, nil", ok, err)
	}
}

func TestHostFrozenWhenRunning(t *testing.T) {
	host, _ := newTestHost(t)
	root := t.TempDir()
	host.Register(writePackage(t, root, "a", manifestFor("a"), "return {}"))
	host.Initialize()

	ok, err := host.Register(writePackage(t, root, "b", manifestFor("b"), "return {}"))
	if ok || err != nil {
		t.Errorf("Register() while running = %v, %v; want false, nil", ok, err)
	}
	if host.Add(FromParts(Metadata{Name: "c"}, &stubAPI{})) {
		t.Error("Add() while running = true")
	}
	if host.Len() != 1 {
		t.Errorf("Len() = %d, want 1", host.Len())
	}
}

func TestHostTrustPolicy(t *testing.T) {
	trusted := t.TempDir()
	host, engine := newTestHost(t, WithTrustPolicy(TrustDirs(trusted)))

	outside := writePackage(t, t.TempDir(), "evil", manifestFor("evil"), `
		evil_ran = true
		return {}
	`)
	ok, err := host.Register(outside)
	if ok || !errors.Is(err, ErrUntrusted) {
		t.Errorf("Register(untrusted) = %v, %v; want false, ErrUntrusted", ok, err)
	}
	if v := engine.GetGlobal("evil_ran").String(); v != "nil" {
		t.Errorf("untrusted script ran: evil_ran = %s", v)
	}

	inside := writePackage(t, trusted, "good", manifestFor("good"), "return {}")
	if ok, err := host.Register(inside); !ok || err != nil {
		t.Errorf("Register(trusted) = %v, %v", ok, err)
	}
}

func TestHostEvents(t *testing.T) {
	host, _ := newTestHost(t)
	root := t.TempDir()

	var mu sync.Mutex
	var got []EventType
	unsubscribe := host.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
	})
	host.Subscribe(func(Event) { panic("handler panics are recovered") })

	host.Register(writePackage(t, root, "a", manifestFor("a"), "return {}"))
	host.Register(writePackage(t, root, "bad", "", ""))
	host.Initialize()
	host.Initialize()

	unsubscribe()
	host.Register(writePackage(t, root, "late", manifestFor("late"), "return {}"))

	want := []EventType{EventRegistered, EventLoadFailed, EventInitialized, EventRunning, EventIgnored}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHostUnsubscribeRemovesHandler(t *testing.T) {
	host, _ := newTestHost(t)

	calls := 0
	keep := host.Subscribe(func(Event) { calls++ })
	defer keep()
	for range 100 {
		unsubscribe := host.Subscribe(func(Event) {})
		unsubscribe()
		unsubscribe()
	}
	if n := host.handlerCount(); n != 1 {
		t.Errorf("handlerCount() = %d, want 1", n)
	}

	host.Initialize()
	if calls != 1 {
		t.Errorf("remaining handler calls = %d, want 1", calls)
	}
}

func TestHostAddRejectsMissingAPI(t *testing.T) {
	host, _ := newTestHost(t)

	if host.Add(nil) {
		t.Error("Add(nil) = true")
	}
	if host.Add(FromParts(Metadata{Name: "hollow"}, nil)) {
		t.Error("Add() without an API = true")
	}
	if host.State() != StateEmpty {
		t.Errorf("State() = %v, want %v", host.State(), StateEmpty)
	}
	if ok, err := host.Initialize(); !ok || err != nil {
		t.Errorf("Initialize() = %v, %v; want true, nil", ok, err)
	}
}

func TestHostClose(t *testing.T) {
	engine := plua.NewState()
	host, err := NewHost(engine)
	if err != nil {
		t.Fatal(err)
	}

	stub := &stubAPI{}
	host.Add(FromParts(Metadata{Name: "s"}, stub))
	host.Register(writePackage(t, t.TempDir(), "a", manifestFor("a"), "return {}"))

	if err := host.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := host.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if stub.closed != 1 {
		t.Errorf("plugin closed %d times, want 1", stub.closed)
	}
	if !engine.IsClosed() {
		t.Error("engine still open after host Close")
	}

	if _, err := host.Register(t.TempDir()); !errors.Is(err, ErrHostClosed) {
		t.Errorf("Register() after Close error = %v, want ErrHostClosed", err)
	}
	if _, err := host.Initialize(); !errors.Is(err, ErrHostClosed) {
		t.Errorf("Initialize() after Close error = %v, want ErrHostClosed", err)
	}
}

func TestHostStateString(t *testing.T) {
	tests := []struct {
		state HostState
		want  string
	}{
		{StateEmpty, "empty"},
		{StateRegistered, "registered"},
		{StateRunning, "running"},
		{HostState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("HostState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
