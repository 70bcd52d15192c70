package cli

import (
	"testing"
	"time"

	"github.com/MaTriXy/babysitter-sub001/internal/config"
	"github.com/MaTriXy/babysitter-sub001/internal/engine"
)

func TestBuildDispatcher(t *testing.T) {
	cfg := &config.Config{Dispatcher: "stub"}
	d, err := buildDispatcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(engine.StubDispatcher); !ok {
		t.Errorf("expected StubDispatcher, got %T", d)
	}

	cfg = &config.Config{
		Dispatcher: "script",
		Script:     config.ScriptConfig{Command: "claude", Timeout: "42s"},
	}
	d, err = buildDispatcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sd, ok := d.(*engine.ScriptDispatcher)
	if !ok {
		t.Fatalf("expected ScriptDispatcher, got %T", d)
	}
	if sd.Command != "claude" || sd.Timeout != 42*time.Second {
		t.Errorf("unexpected dispatcher config: %+v", sd)
	}

	if _, err := buildDispatcher(&config.Config{Dispatcher: "smoke-signals"}); err == nil {
		t.Error("expected error for unknown dispatcher")
	}
}

func TestBuildGate(t *testing.T) {
	if _, ok := buildGate(&config.Config{Approval: "auto"}).(engine.AutoGate); !ok {
		t.Error("expected AutoGate for approval=auto")
	}
	if _, ok := buildGate(&config.Config{Approval: "console"}).(*engine.ConsoleGate); !ok {
		t.Error("expected ConsoleGate for approval=console")
	}
}
