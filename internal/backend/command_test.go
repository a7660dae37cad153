package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctcseg/internal/matrix"
	"ctcseg/internal/services"
)

func sampleRequest() Request {
	return Request{
		Matrix: &matrix.Matrix{
			Rows:   []matrix.Row{matrix.EmptyRow, {2, -1}, {0, -1}},
			Begins: []int{1, 2},
		},
		LogProbs:   [][]float64{{-1, -2, -3, -0.1}, {-0.5, -2, -3, -1}},
		Vocabulary: []string{"a", "b", " ", "ε"},
		Params:     Params{Blank: 3, MinWindowSize: 8000, IndexDuration: 0.04, ScoreWindow: 30},
	}
}

const validResponse = `{"timings":[0,0.04,0.08],"char_probs":[-0.1,-0.5],"char_list":["ε","a"]}`

func TestCommandAlignSendsRequest(t *testing.T) {
	var captured wireRequest
	cmd := NewCommand("aligner", "--json").WithRunner(func(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
		if name != "aligner" || len(args) != 1 || args[0] != "--json" {
			t.Fatalf("unexpected invocation %s %v", name, args)
		}
		if err := json.Unmarshal(stdin, &captured); err != nil {
			t.Fatalf("decode stdin: %v", err)
		}
		return []byte(validResponse), nil
	})

	res, err := cmd.Align(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(res.Timings) != 3 || res.Symbols[1] != "a" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(captured.Matrix) != 3 || captured.Matrix[1][0] != 2 || captured.Matrix[1][1] != -1 {
		t.Fatalf("matrix not forwarded: %v", captured.Matrix)
	}
	if captured.Blank != 3 || captured.ScoreWindow != 30 || captured.MinWindowSize != 8000 {
		t.Fatalf("params not forwarded: %+v", captured.Params)
	}
	if len(captured.LogProbs) != 2 || captured.Vocabulary[3] != "ε" {
		t.Fatalf("payload not forwarded: %+v", captured)
	}
}

func TestCommandAlignFailures(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		runErr error
		marker error
	}{
		{name: "process failure", runErr: errors.New("exit status 1"), marker: services.ErrExternalTool},
		{name: "bad json", out: "not json", marker: services.ErrExternalTool},
		{name: "wrong timings", out: `{"timings":[0],"char_probs":[-0.1,-0.5],"char_list":["ε","a"]}`, marker: services.ErrValidation},
		{name: "wrong frames", out: `{"timings":[0,0.04,0.08],"char_probs":[-0.1],"char_list":["ε"]}`, marker: services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand("aligner").WithRunner(func(context.Context, string, []string, []byte) ([]byte, error) {
				return []byte(tt.out), tt.runErr
			})
			_, err := cmd.Align(context.Background(), sampleRequest())
			if !errors.Is(err, tt.marker) {
				t.Fatalf("error = %v, want %v", err, tt.marker)
			}
		})
	}
}

func TestCommandAlignRequiresCommand(t *testing.T) {
	_, err := NewCommand("").Align(context.Background(), sampleRequest())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v", err)
	}
}

func TestCommandAlignExecutesProcess(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "aligner.sh")
	body := "#!/bin/sh\ncat > \"" + filepath.Join(dir, "stdin.json") + "\"\nprintf '%s' '" + validResponse + "'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	res, err := NewCommand(script).Align(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if res.Frames() != 2 {
		t.Fatalf("frames = %d", res.Frames())
	}
	data, err := os.ReadFile(filepath.Join(dir, "stdin.json"))
	if err != nil {
		t.Fatalf("read stdin capture: %v", err)
	}
	if !strings.Contains(string(data), `"ground_truth_mat"`) {
		t.Fatalf("stdin = %s", data)
	}
}

func TestCommandAlignReportsStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'model missing' >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	_, err := NewCommand(script).Align(context.Background(), sampleRequest())
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "model missing") {
		t.Fatalf("error = %v", err)
	}
}
