// Package linear provides a synchronous, line-buffered renderer.
// Output lines are prefixed with the name of the task that produced them.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/rbuild/internal/ui/output"
	"go.trai.ch/rbuild/internal/ui/style"
)

// Renderer implements ports.Renderer with linear, chronological output.
//
// Top-level spans are tasks. Spans started under a task are its commands:
// their output is prefixed with the task name.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	spans   map[string]*spanState // spanID -> span state
	buffers map[string]*bytes.Buffer
}

type spanState struct {
	task      string
	command   string
	startTime time.Time
}

func (s *spanState) isCommand() bool {
	return s.command != ""
}

// NewRenderer creates a new Renderer.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		spans:   make(map[string]*spanState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op for the linear renderer.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	return nil
}

// OnPlanEmit prints the execution order.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	arrow := " " + style.Arrow + " "
	_, _ = fmt.Fprintf(r.stderr, "Plan for %s: %s\n",
		strings.Join(targets, ", "), strings.Join(tasks, arrow))
}

// OnTaskStart prints a task start message, or the command line for command spans.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &spanState{task: name, startTime: startTime}
	if parent, ok := r.spans[parentID]; ok && parentID != "" {
		state = &spanState{task: parent.task, command: name, startTime: startTime}
	}
	r.spans[spanID] = state
	r.buffers[spanID] = new(bytes.Buffer)

	prefix := r.prefix(state.task)
	if state.isCommand() {
		line := r.output.String("$ " + state.command).Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s\n", prefix, line)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnTaskLog buffers log data and prints complete lines with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.spans[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		i := bytes.IndexByte(buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		r.printLineLocked(state.task, buf.Next(i+1))
	}
}

// OnTaskComplete flushes the remaining buffer and prints the completion status of tasks.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.spans[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)
	delete(r.spans, spanID)
	delete(r.buffers, spanID)

	// Command failures are reported by the enclosing task.
	if state.isCommand() {
		return
	}

	duration := endTime.Sub(state.startTime).Round(time.Millisecond)
	prefix := r.prefix(state.task)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}

func (r *Renderer) prefix(task string) string {
	return r.output.String(fmt.Sprintf("[%s]", task)).Bold().String()
}

// flushBufferLocked prints any partial line left for a span.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	state, ok := r.spans[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(state.task, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the task name prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(task string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		_, _ = fmt.Fprintf(r.stdout, "[%s]\n", task)
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", task, line)
}
