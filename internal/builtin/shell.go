package builtin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/sidwan02/subagentengine/internal/schema"
	"github.com/sidwan02/subagentengine/registry"
)

const (
	defaultShellTimeoutMs = 120_000
	maxShellTimeoutMs     = 600_000
)

// shellInput mirrors shell's declared schema.
type shellInput struct {
	Command     string `json:"command" jsonschema:"required,description=The shell command to execute"`
	Description string `json:"description,omitempty" jsonschema:"description=A short description of what the command does"`
	Timeout     *int   `json:"timeout,omitempty" jsonschema:"description=Timeout in milliseconds, max 600000"`
}

var shellDecl = schema.GenerateDeclaration[shellInput]("shell", "Execute a shell command and capture its output")

func (h *Host) shell(ctx context.Context, args map[string]any, onChunk registry.OutputChunkFunc) (string, string, error) {
	command := stringArg(args, "command")
	if command == "" {
		return "", "", fmt.Errorf("command is required")
	}

	timeoutMs := defaultShellTimeoutMs
	if v, ok := intArg(args, "timeout"); ok && v > 0 {
		if v > maxShellTimeoutMs {
			v = maxShellTimeoutMs
		}
		timeoutMs = v
	}

	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "bash", "-c", command)
	cmd.Dir = h.workDir

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return h.shellWithoutPTY(cmdCtx, command)
	}
	defer ptmx.Close()

	// A PTY read returns EIO once the child exits; that's expected, so
	// the read error is discarded rather than surfaced.
	output, _ := streamOutput(ptmx, onChunk)
	waitErr := cmd.Wait()

	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n... [output truncated]"
	}

	if cmdCtx.Err() == context.DeadlineExceeded {
		return "", "", fmt.Errorf("command timed out after %dms", timeoutMs)
	}

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}
	if exitCode != 0 {
		return "", "", fmt.Errorf("command exited %d:\n%s", exitCode, output)
	}
	return output, fmt.Sprintf("exit 0 (%d bytes)", len(output)), nil
}

func (h *Host) shellWithoutPTY(ctx context.Context, command string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = h.workDir
	output, err := cmd.CombinedOutput()

	text := string(output)
	if len(text) > maxOutputBytes {
		text = text[:maxOutputBytes] + "\n... [output truncated]"
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", "", fmt.Errorf("command timed out")
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}
	if exitCode != 0 {
		return "", "", fmt.Errorf("command exited %d:\n%s", exitCode, text)
	}
	return text, fmt.Sprintf("exit 0 (%d bytes)", len(text)), nil
}

// streamOutput reads from the PTY line by line, forwarding each line to
// onChunk as it arrives, and returns the full accumulated output. A PTY
// read returns EIO once the child exits; that's expected, not an error.
func streamOutput(r io.Reader, onChunk registry.OutputChunkFunc) (string, error) {
	var out []byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		out = append(out, line...)
		out = append(out, '\n')
		if onChunk != nil {
			onChunk(string(line))
		}
	}
	return string(out), scanner.Err()
}
