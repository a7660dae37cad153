package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"ctcseg/internal/segment"
	"ctcseg/internal/services"
)

const stageName = "alignment"

// Runner executes name with args, feeding stdin and returning stdout.
type Runner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// Command runs an external alignment program per request.
type Command struct {
	name   string
	args   []string
	runner Runner
}

// NewCommand returns an Aligner that executes name with args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: append([]string(nil), args...)}
}

// WithRunner sets a custom runner (for testing).
func (c *Command) WithRunner(runner Runner) *Command {
	c.runner = runner
	return c
}

// Name returns the configured executable.
func (c *Command) Name() string { return c.name }

type wireRequest struct {
	Matrix     [][]int     `json:"ground_truth_mat"`
	LogProbs   [][]float64 `json:"lpz"`
	Vocabulary []string    `json:"char_list"`
	Params
}

// Align sends the request to the external program and validates its answer
// against the matrix and frame counts.
func (c *Command) Align(ctx context.Context, req Request) (*segment.Alignment, error) {
	if strings.TrimSpace(c.name) == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "run backend", "no backend command configured", nil)
	}
	if req.Matrix == nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "encode request", "missing transition matrix", nil)
	}
	payload, err := json.Marshal(wireRequest{
		Matrix:     req.Matrix.Slots(),
		LogProbs:   req.LogProbs,
		Vocabulary: req.Vocabulary,
		Params:     req.Params,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrInternal, stageName, "encode request", "", err)
	}

	out, err := c.run(ctx, payload)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, stageName, "run backend", c.name, err)
	}

	var result segment.Alignment
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, stageName, "decode response", c.name, err)
	}
	if err := result.Validate(len(req.Matrix.Rows)); err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "check response", "", err)
	}
	if frames := len(req.LogProbs); result.Frames() != frames {
		return nil, services.Wrap(services.ErrValidation, stageName, "check response",
			fmt.Sprintf("%d frames returned for %d input frames", result.Frames(), frames), nil)
	}
	return &result, nil
}

func (c *Command) run(ctx context.Context, stdin []byte) ([]byte, error) {
	if c.runner != nil {
		return c.runner(ctx, c.name, c.args, stdin)
	}
	cmd := exec.CommandContext(ctx, c.name, c.args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", c.name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
