package quirks

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/winbridge/internal/entities"
	"github.com/1broseidon/winbridge/internal/platform"
)

var (
	win10 = platform.Platform{OS: "windows", Description: "Microsoft Windows 10.0.19045"}
	linux = platform.Platform{OS: "linux", Description: "Linux 6.8.0"}
)

func TestCompensate(t *testing.T) {
	tests := []struct {
		name     string
		platform platform.Platform
		opts     entities.WindowOptions
		wantW    int
		wantH    int
		wantX    int
		wantY    int
	}{
		{"default position, affected", win10, entities.DefaultWindowOptions(), 814, 607, -7, 0},
		{"default position, unaffected", linux, entities.DefaultWindowOptions(), 800, 600, 0, 0},
		{"explicit position, affected", win10, entities.WindowOptions{Width: 1024, Height: 768, X: entities.Int(100), Y: entities.Int(50)}, 1038, 775, 93, 50},
		{"explicit position, unaffected", linux, entities.WindowOptions{Width: 1024, Height: 768, X: entities.Int(100), Y: entities.Int(50)}, 1024, 768, 100, 50},
		{"only x given", linux, entities.WindowOptions{X: entities.Int(10)}, 0, 0, 10, 0},
		{"zero size, affected", win10, entities.WindowOptions{}, 814, 607, -7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compensate(tt.opts, tt.platform, Builtin)
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if got.X == nil || got.Y == nil {
				t.Fatalf("position not made explicit: x=%v y=%v", got.X, got.Y)
			}
			if *got.X != tt.wantX || *got.Y != tt.wantY {
				t.Errorf("position = (%d,%d), want (%d,%d)", *got.X, *got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestCompensate_DoesNotMutateInput(t *testing.T) {
	x := 100
	opts := entities.WindowOptions{Width: 640, Height: 480, X: &x, Y: entities.Int(20)}
	before := opts

	_ = Compensate(opts, win10, Builtin)

	if x != 100 {
		t.Fatalf("caller's X pointer target changed to %d", x)
	}
	if !reflect.DeepEqual(opts, before) {
		t.Fatalf("options changed: %+v, want %+v", opts, before)
	}
}

func TestCompensate_Deterministic(t *testing.T) {
	opts := entities.DefaultWindowOptions()
	first := Compensate(opts, win10, Builtin)
	for i := 0; i < 5; i++ {
		got := Compensate(opts, win10, Builtin)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Name: "a", Match: "Windows", WidthDelta: 1},
		{Name: "b", Match: "Windows 10", WidthDelta: 2},
	}
	got, ok := Match(win10, rules)
	if !ok || got.Name != "a" {
		t.Fatalf("Match() = %+v, %v, want rule a", got, ok)
	}
	if _, ok := Match(linux, rules); ok {
		t.Fatal("Match() matched linux")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		url  string
		port int
		want string
	}{
		{"http://localhost", 8001, "http://localhost:8001"},
		{"HTTP://LOCALHOST", 8001, "HTTP://LOCALHOST:8001"},
		{"", 8001, "http://localhost:8001"},
		{"http://localhost/app", 8001, "http://localhost/app"},
		{"https://example.com", 8001, "https://example.com"},
		{"http://localhost", 0, "http://localhost"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.url, tt.port); got != tt.want {
			t.Errorf("NormalizeURL(%q, %d) = %q, want %q", tt.url, tt.port, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Builtin); err != nil {
		t.Fatalf("Validate(Builtin) error: %v", err)
	}
	err := Validate([]Rule{{Name: "ok", Match: "X"}, {Name: "empty", Match: "  "}})
	var rerr *RuleError
	if !errors.As(err, &rerr) {
		t.Fatalf("Validate() = %v, want RuleError", err)
	}
	if rerr.Index != 1 || rerr.Name != "empty" {
		t.Fatalf("RuleError = %+v, want index 1 named empty", rerr)
	}
}
