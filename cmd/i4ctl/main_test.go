package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeDecode(t *testing.T) {
	out, err := run(t, `["tell",0,"Mud","bob","*i4","alice",{"map":[["k",1.5]]}]`, "encode", "--outbound")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := strings.TrimSpace(out)
	want := `({"tell",5,"Mud","bob","*i4","alice",(["k":1.5])})`
	if text != want {
		t.Fatalf("encode mismatch:\n got=%s\nwant=%s", text, want)
	}

	out, err = run(t, text+"\n", "decode")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var decoded []any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode output not json: %v\n%s", err, out)
	}
	if len(decoded) != 7 || decoded[0] != "tell" || decoded[1] != float64(5) {
		t.Fatalf("unexpected decode: %v", decoded)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	out, err := run(t, `["who-req",5,"Mud","bob","*i4",0]`, "encode", "--frame")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(out, "00000024") {
		t.Fatalf("unexpected frame prefix: %s", out)
	}

	out, err = run(t, out, "decode", "--frame", "--hex")
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if !strings.Contains(out, `"who-req"`) {
		t.Fatalf("unexpected decode: %s", out)
	}
}

func TestCodecErrors(t *testing.T) {
	if _, err := run(t, `"not a list"`, "encode"); err == nil {
		t.Fatalf("expected encode error")
	}
	if _, err := run(t, `({1,2`, "decode"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := run(t, `zz`, "decode", "--frame", "--hex"); err == nil {
		t.Fatalf("expected hex error")
	}
}

func TestConfigInitValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i4.toml")
	if _, err := run(t, "", "config", "init", "--output", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, "", "config", "init", "--output", path); err == nil {
		t.Fatalf("expected existing file error")
	}
	if _, err := run(t, "", "config", "init", "--output", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	out, err := run(t, "", "config", "validate", "--input", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.HasPrefix(out, "valid: *i4") {
		t.Fatalf("unexpected validate output: %s", out)
	}
}
