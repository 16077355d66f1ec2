package logger

import "testing"

func TestBuildRID(t *testing.T) {
	if got := BuildRID(42, 7, 9); got != "42:7:9" {
		t.Fatalf("BuildRID = %s", got)
	}
}

func TestContextCarriers(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithHandler(ctx, "menu")

	if RIDFrom(ctx) != "rid-123" {
		t.Fatalf("rid = %s", RIDFrom(ctx))
	}
	if UpdateIDFrom(ctx) != 42 {
		t.Fatalf("update_id = %d", UpdateIDFrom(ctx))
	}
	if UserIDFrom(ctx) != 7 {
		t.Fatalf("user_id = %d", UserIDFrom(ctx))
	}
	if ChatIDFrom(ctx) != 9 {
		t.Fatalf("chat_id = %d", ChatIDFrom(ctx))
	}
	if HandlerFrom(ctx) != "menu" {
		t.Fatalf("handler = %s", HandlerFrom(ctx))
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "abc\x00def\tghi"
	out := SanitizeLimit(in, 6)
	if out != "abcdef" {
		t.Fatalf("SanitizeLimit = %q", out)
	}
	if SanitizeLimit("short", 64) != "short" {
		t.Fatal("expected passthrough")
	}
	if SanitizeLimit("anything", 0) != "" {
		t.Fatal("expected empty for non-positive limit")
	}
}
