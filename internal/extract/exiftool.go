package extract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

const toolName = "exiftool"

// runTool executes exiftool with the request's stream on stdin and returns
// the parsed tag map. The stream is piped through a bounded buffer, never
// held whole in memory.
func (e *Extractor) runTool(ctx context.Context, req *Request) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeoutFor(req.Size))
	defer cancel()

	cmd := exec.CommandContext(ctx, toolName, e.toolArgs(tagsFor(req.AssetType))...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", toolName, err)
	}

	output, toolErr, err := e.streamIO(stdin, stdout, stderr, req)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s command failed: %w (stderr: %s)", toolName, err, strings.TrimSpace(toolErr))
	}

	if isCriticalStderr(toolErr) {
		return nil, fmt.Errorf("%s reported error: %s", toolName, strings.TrimSpace(toolErr))
	}

	return parseToolOutput(output)
}

// toolArgs builds the exiftool argument list: JSON output, UTF-8, minor
// errors ignored, requested tags only, input from stdin.
func (e *Extractor) toolArgs(tags []string) []string {
	args := []string{"-j", "-charset", "utf8", "-ignoreMinorErrors"}
	if e.config.FastMode {
		args = append(args, "-fast")
	}
	for _, tag := range tags {
		args = append(args, "-"+tag)
	}
	return append(args, "-")
}

// streamIO pumps the request stream into stdin while draining stdout and
// stderr concurrently, so neither side of the pipe can deadlock.
func (e *Extractor) streamIO(stdin io.WriteCloser, stdout, stderr io.ReadCloser, req *Request) ([]byte, string, error) {
	var outBuf, errBuf bytes.Buffer
	done := make(chan error, 3)

	go func() {
		defer stdin.Close()
		bufSize := e.bufferSizeFor(req.Size)
		br := bufio.NewReaderSize(req.Reader, bufSize)
		_, err := io.CopyBuffer(stdin, br, make([]byte, bufSize))
		done <- err
	}()
	go func() {
		_, err := io.Copy(&outBuf, stdout)
		done <- err
	}()
	go func() {
		_, err := io.Copy(&errBuf, stderr)
		done <- err
	}()

	var firstErr error
	for i := 0; i < 3; i++ {
		if err := <-done; err != nil && err != io.EOF && firstErr == nil {
			firstErr = fmt.Errorf("i/o error during %s execution: %w", toolName, err)
		}
	}
	if firstErr != nil {
		return nil, errBuf.String(), firstErr
	}

	return outBuf.Bytes(), errBuf.String(), nil
}

// isCriticalStderr distinguishes real tool errors from the warnings
// exiftool routinely emits for imperfect files.
func isCriticalStderr(stderr string) bool {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return false
	}
	lower := strings.ToLower(stderr)
	for _, w := range []string{"warning", "unknown file type", "end of directory", "minor errors"} {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// parseToolOutput converts exiftool's JSON array output to a flat string
// map. Empty output is not an error; it means no tags were found.
func parseToolOutput(output []byte) (map[string]string, error) {
	fields := make(map[string]string)
	if len(bytes.TrimSpace(output)) == 0 {
		return fields, nil
	}

	var records []map[string]any
	if err := json.Unmarshal(output, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s JSON output: %w", toolName, err)
	}
	if len(records) == 0 {
		return fields, nil
	}

	for key, value := range records[0] {
		if value != nil {
			fields[key] = fmt.Sprintf("%v", value)
		}
	}
	return fields, nil
}

// IsExifToolAvailable reports whether exiftool responds on this host.
func IsExifToolAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, toolName, "-ver").Run() == nil
}

// ExifToolVersion returns the installed exiftool version string.
func ExifToolVersion() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, toolName, "-ver").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ValidateExifToolInstallation checks that exiftool is on PATH and
// responding. Called once at startup so a misconfigured host fails loudly.
func ValidateExifToolInstallation() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return err
	}
	if !IsExifToolAvailable() {
		return fmt.Errorf("%s is installed but not responding to version command", toolName)
	}
	return nil
}
