// Package process runs the clone-assignment inference as an external
// command. The statistical model lives outside this module (typically a
// python process); the adapter streams the consensus inputs as JSON on
// stdin and decodes the aggregated result from stdout.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/molonc/treealign/pkg/domain"
)

// Assigner implements ports.Assigner by executing a configured command.
type Assigner struct {
	command string
	args    []string
}

// request is the wire format written to the child's stdin.
type request struct {
	Inputs *domain.ProfileInputs `json:"inputs"`
	Repeat int                   `json:"repeat"`
}

// NewAssigner creates a process-backed assigner. The command is trusted
// configuration, not user input.
func NewAssigner(command string, args ...string) *Assigner {
	return &Assigner{command: command, args: args}
}

// Run executes the command once per visit. Any failure (spawn error,
// non-zero exit, undecodable output) is a collaborator failure: the engine
// does not catch it and the traversal aborts.
func (a *Assigner) Run(ctx context.Context, inputs *domain.ProfileInputs, repeat int) (*domain.AssignResult, error) {
	payload, err := json.Marshal(request{Inputs: inputs, Repeat: repeat})
	if err != nil {
		return nil, fmt.Errorf("marshal assigner request: %w", err)
	}

	cmd := exec.CommandContext(ctx, a.command, a.args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("assigner command failed: %w (stderr: %s)", err, stderr.String())
	}

	var result domain.AssignResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("decode assigner output: %w", err)
	}
	if result.NoneFreq < 0 || result.NoneFreq > 1 {
		return nil, fmt.Errorf("assigner returned none_freq %v outside [0,1]", result.NoneFreq)
	}
	return &result, nil
}
