package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// decodeDocuments decodes every YAML document in s.
func decodeDocuments(t *testing.T, s string) []map[string]any {
	t.Helper()

	dec := yaml.NewDecoder(strings.NewReader(s))
	var docs []map[string]any
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("failed to decode output: %v\n%s", err, s)
		}
		docs = append(docs, doc)
	}
	return docs
}

func TestRunRun_PrintsEmissionsAndSelections(t *testing.T) {
	path := writeScenario(t, `
groups: [ui]
initial_state:
  user: {name: Alice}
  count: 0
watch:
  - {group: state, channel: changed}
  - {group: state, channel: reset}
  - {group: ui, channel: click}
steps:
  - update: {count: 1}
  - update: {clicked: true}
    group: ui
    channel: click
  - select: user.name
  - select: [count, missing]
  - reset: {count: 0}
`)

	output, _, err := executeCmd(t, "run", "-c", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	docs := decodeDocuments(t, output)
	if len(docs) != 5 {
		t.Fatalf("got %d documents, want 5\n%s", len(docs), output)
	}

	wantEvents := []string{"emit", "emit", "select", "select", "emit"}
	for i, want := range wantEvents {
		if docs[i]["event"] != want {
			t.Errorf("docs[%d].event = %v, want %v", i, docs[i]["event"], want)
		}
	}

	first := docs[0]
	if first["group"] != "state" || first["channel"] != "changed" {
		t.Errorf("docs[0] target = %v/%v, want state/changed", first["group"], first["channel"])
	}
	if next := first["next"].(map[string]any); next["count"] != 1 {
		t.Errorf("docs[0].next.count = %v, want 1", next["count"])
	}
	if prev := first["prev"].(map[string]any); prev["count"] != 0 {
		t.Errorf("docs[0].prev.count = %v, want 0", prev["count"])
	}

	if docs[1]["channel"] != "click" {
		t.Errorf("docs[1].channel = %v, want click", docs[1]["channel"])
	}
	if docs[2]["selected"] != "Alice" {
		t.Errorf("docs[2].selected = %v, want Alice", docs[2]["selected"])
	}
	if docs[2]["step"] != 2 {
		t.Errorf("docs[2].step = %v, want 2", docs[2]["step"])
	}

	keys := docs[3]["selected"].(map[string]any)
	if keys["count"] != 1 {
		t.Errorf("docs[3].selected.count = %v, want 1", keys["count"])
	}
	if v, ok := keys["missing"]; !ok || v != nil {
		t.Errorf("docs[3].selected.missing = %v (present %v), want null", v, ok)
	}

	if docs[4]["channel"] != "reset" {
		t.Errorf("docs[4].channel = %v, want reset", docs[4]["channel"])
	}
}

func TestRunRun_LogsLifecycle(t *testing.T) {
	path := writeScenario(t, `
steps:
  - update: {a: 1}
`)

	_, stderr, err := executeCmd(t, "run", "-c", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"scenario loaded"`) {
		t.Errorf("stderr missing scenario loaded log:\n%s", stderr)
	}
	if !strings.Contains(stderr, `"msg":"scenario complete"`) {
		t.Errorf("stderr missing scenario complete log:\n%s", stderr)
	}
}

func TestRunRun_InvalidScenario(t *testing.T) {
	path := writeScenario(t, `
steps:
  - reset: 3
`)

	_, _, err := executeCmd(t, "run", "-c", path)
	if err == nil {
		t.Fatal("expected error for invalid scenario")
	}
	if !strings.Contains(err.Error(), "failed to load scenario") {
		t.Errorf("error = %v, want load failure", err)
	}
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunRun_OutputWriteFailure(t *testing.T) {
	path := writeScenario(t, `
watch:
  - {group: state, channel: changed}
steps:
  - update: {a: 1}
  - select: a
`)

	var stderr bytes.Buffer
	rootCmd.SetOut(failingWriter{})
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"run", "-c", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error when output cannot be written")
	}
	if !strings.Contains(err.Error(), "failed to write output") {
		t.Errorf("error = %v, want output write failure", err)
	}
	if strings.Contains(stderr.String(), `"msg":"scenario complete"`) {
		t.Errorf("scenario reported complete despite write failure:\n%s", stderr.String())
	}
}

func TestRunRun_NoOutputSucceeds(t *testing.T) {
	path := writeScenario(t, `
steps:
  - update: {a: 1}
  - reset: {}
`)

	output, _, err := executeCmd(t, "run", "-c", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if output != "" {
		t.Errorf("output = %q, want empty", output)
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output without verbose: %q", buf.String())
	}

	newLogger(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug output missing with verbose: %q", buf.String())
	}
}
