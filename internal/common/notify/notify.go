// Package notify carries the transient success/error messages shown to the user.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"reportdesk/internal/common/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a transient message. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// WriterNotifier prints styled one-line toasts, typically to stderr.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Success(msg string) {
	n.write(successStyle.Render("✔ ") + msg)
}

func (n *WriterNotifier) Error(msg string) {
	n.write(errorStyle.Render("✖ ") + msg)
}

func (n *WriterNotifier) write(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, line)
}

// LogNotifier forwards notifications to the structured logger.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(l logger.Logger) *LogNotifier {
	return &LogNotifier{logger: l.WithFields(map[string]interface{}{"component": "notify"})}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info(msg, map[string]interface{}{"level": string(LevelSuccess)})
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Warn(msg, map[string]interface{}{"level": string(LevelError)})
}

// Recorder keeps every notification in memory. The TUI drains it to render
// toasts; tests assert on it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: msg})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Drain returns and clears the recorded messages.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// Errors returns the recorded error texts.
func (r *Recorder) Errors() []string {
	return r.texts(LevelError)
}

// Successes returns the recorded success texts.
func (r *Recorder) Successes() []string {
	return r.texts(LevelSuccess)
}

func (r *Recorder) texts(level Level) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
