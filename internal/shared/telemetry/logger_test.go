package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestInfoWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("scan.upload", map[string]any{
		"user_id": "user-1",
		"err":     errors.New("boom"),
	})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["msg"] != "scan.upload" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "INFO" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", payload["err"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}
