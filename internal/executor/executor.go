// Package executor provides the code execution capability used by the
// execute endpoint. Only Python runs for real, via a python3 subprocess;
// the remaining languages return stub results describing the missing
// runtime. It is entirely decoupled from the collaboration core.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/collab-code-pad/backend/internal/model"
)

// Execution timeout bounds, in seconds.
const (
	MinTimeoutSeconds     = 1
	MaxTimeoutSeconds     = 10
	DefaultTimeoutSeconds = 5
)

// Result describes one code execution.
type Result struct {
	Success       bool    `json:"success"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	ExitCode      int     `json:"exitCode"`
	ExecutionTime float64 `json:"executionTime"`
	Error         string  `json:"error,omitempty"`
}

// ErrUnsupportedLanguage is returned when no executor exists for a language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

type executeFunc func(ctx context.Context, code, stdin string, timeout time.Duration) Result

// Executor dispatches code execution by language.
type Executor struct {
	executors map[model.Language]executeFunc
}

// New creates an Executor with the default language dispatch table.
func New() *Executor {
	return &Executor{
		executors: map[model.Language]executeFunc{
			model.LanguagePython:     executePython,
			model.LanguageJavaScript: stubExecutor("JavaScript", "Node.js runtime"),
			model.LanguageJava:       stubExecutor("Java", "JDK runtime"),
			model.LanguageCPP:        stubExecutor("C++", "GCC compiler"),
		},
	}
}

// Execute runs the given code and returns the captured output and exit
// status. A zero timeout means the default; out-of-range timeouts are
// rejected with model.ErrInvalidTimeout.
func (e *Executor) Execute(ctx context.Context, code string, language model.Language, stdin string, timeoutSeconds int) (Result, error) {
	fn, ok := e.executors[language]
	if !ok {
		return Result{}, ErrUnsupportedLanguage
	}

	if timeoutSeconds == 0 {
		timeoutSeconds = DefaultTimeoutSeconds
	}
	if timeoutSeconds < MinTimeoutSeconds || timeoutSeconds > MaxTimeoutSeconds {
		return Result{}, model.ErrInvalidTimeout
	}

	result := fn(ctx, code, stdin, time.Duration(timeoutSeconds)*time.Second)

	log.Info().
		Str("language", string(language)).
		Bool("success", result.Success).
		Float64("executionTimeMs", result.ExecutionTime).
		Msg("code executed")

	return result, nil
}

// executePython runs the code in a python3 subprocess with captured pipes.
func executePython(ctx context.Context, code, stdin string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	cmd := exec.CommandContext(ctx, "python3", "-c", code)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	result := Result{
		Stdout:        stdout.String(),
		Stderr:        stderr.String(),
		ExecutionTime: elapsed,
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.ExitCode = 1
		result.Error = "execution timed out"
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
		result.Error = err.Error()
	default:
		result.Success = true
	}

	return result
}

// stubExecutor builds the fixed result for languages without a runtime.
func stubExecutor(name, runtime string) executeFunc {
	return func(ctx context.Context, code, stdin string, timeout time.Duration) Result {
		return Result{
			Success:  false,
			Stderr:   name + " execution requires " + runtime + " (not available)",
			ExitCode: 1,
			Error:    name + " execution not available",
		}
	}
}
