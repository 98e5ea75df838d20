package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestResolvePrefersStampedValues(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	got := resolve("v0.3.0", "", "", bi)
	if got.Version != "v0.3.0" || got.Commit != "0123456789ab" || got.Date != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected info %+v", got)
	}
}

func TestResolveDefaults(t *testing.T) {
	got := resolve("", "", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" || got.Commit != "local" || got.GoVersion == "" {
		t.Fatalf("unexpected info %+v", got)
	}
	if resolve("", "", "", nil).Version != "dev" {
		t.Fatal("nil build info should still resolve")
	}
}
