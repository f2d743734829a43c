// Package terminal formats chat-style agent interactions into titled,
// color-coded blocks for terminal display. All state lives on a Console
// owned by the caller; the package keeps no globals.
//
// A Console is not safe for concurrent use. Interactive terminal output is
// serialized by a single rendering surface in its intended usage, so the
// display methods take no locks.
package terminal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Kind names a display event that external code may hook into.
type Kind string

const (
	KindInteraction    Kind = "interaction"
	KindSelfReflection Kind = "self_reflection"
	KindInstruction    Kind = "instruction"
	KindToolCall       Kind = "tool_call"
	KindError          Kind = "error"
	KindGenerating     Kind = "generating"
)

// Event carries the sanitized payloads handed to a registered callback.
// ElapsedTime is pre-formatted with one decimal place and a trailing "s",
// or empty when no timing was supplied.
type Event struct {
	Kind        Kind
	Message     string
	Response    string
	Markdown    bool
	ElapsedTime string
}

type Callback func(Event)

const defaultWidth = 80

// Console is the output sink for agent display events. It owns the
// callback registry and the error log that the process-wide globals of
// older designs used to hold.
type Console struct {
	writer    io.Writer
	width     int
	callbacks map[Kind]Callback
	errorLog  []string
}

type Option func(*Console)

func WithWriter(w io.Writer) Option {
	return func(c *Console) {
		c.writer = w
	}
}

func WithWidth(width int) Option {
	return func(c *Console) {
		if width > 0 {
			c.width = width
		}
	}
}

func New(opts ...Option) *Console {
	console := &Console{
		width:     defaultWidth,
		callbacks: make(map[Kind]Callback),
	}
	for _, opt := range opts {
		opt(console)
	}

	return console
}

// RegisterCallback stores fn under kind, overwriting any previous handler.
// There is no unregister; a kind with no handler is silently skipped.
func (c *Console) RegisterCallback(kind Kind, fn Callback) {
	c.callbacks[kind] = fn
}

// ErrorLog returns a snapshot of every message Error has displayed, in
// order. The log is append-only and never trimmed.
func (c *Console) ErrorLog() []string {
	snapshot := make([]string, len(c.errorLog))
	copy(snapshot, c.errorLog)
	return snapshot
}

type interactionOptions struct {
	markdown       bool
	generationTime time.Duration
}

type InteractionOption func(*interactionOptions)

// WithPlainText renders the interaction as styled text instead of
// markdown.
func WithPlainText() InteractionOption {
	return func(o *interactionOptions) {
		o.markdown = false
	}
}

// WithGenerationTime prepends a dim "Response generated in N.Ns" note.
func WithGenerationTime(d time.Duration) InteractionOption {
	return func(o *interactionOptions) {
		o.generationTime = d
	}
}

// Interaction displays a message/response pair. Unlike the single-payload
// displays it always proceeds, even when both payloads sanitize to empty.
func (c *Console) Interaction(message Content, response string, opts ...InteractionOption) {
	options := interactionOptions{markdown: true}
	for _, opt := range opts {
		opt(&options)
	}

	msg := CleanContent(message.firstText(), DefaultMaxContentLength)
	resp := CleanContent(response, DefaultMaxContentLength)

	elapsed := ""
	if options.generationTime > 0 {
		elapsed = formatElapsed(options.generationTime)
	}

	c.invoke(Event{
		Kind:        KindInteraction,
		Message:     msg,
		Response:    resp,
		Markdown:    options.markdown,
		ElapsedTime: elapsed,
	})

	w := c.sink()
	if elapsed != "" {
		fmt.Fprintln(w, dimStyle.Render("Response generated in "+elapsed))
	}

	if options.markdown {
		fmt.Fprintln(w, c.panel("Message", c.markdown(msg), interactionBorderStyle))
		fmt.Fprintln(w, c.panel("Response", c.markdown(resp), interactionBorderStyle))
		return
	}

	fmt.Fprintln(w, c.panel("Message", messageTextStyle.Render(msg), interactionBorderStyle))
	fmt.Fprintln(w, c.panel("Response", responseTextStyle.Render(resp), interactionBorderStyle))
}

// SelfReflection displays the result of a self-critique pass.
func (c *Console) SelfReflection(message string) {
	message = CleanContent(message, DefaultMaxContentLength)
	if message == "" {
		return
	}

	c.invoke(Event{Kind: KindSelfReflection, Message: message})
	fmt.Fprintln(c.sink(), c.panel("Self Reflection", reflectionTextStyle.Render(message), reflectionBorderStyle))
}

// Instruction displays a directive handed to an agent.
func (c *Console) Instruction(message string) {
	message = CleanContent(message, DefaultMaxContentLength)
	if message == "" {
		return
	}

	c.invoke(Event{Kind: KindInstruction, Message: message})
	fmt.Fprintln(c.sink(), c.panel("Instruction", instructionTextStyle.Render(message), instructionBorderStyle))
}

// ToolCall displays a tool invocation.
func (c *Console) ToolCall(message string) {
	message = CleanContent(message, DefaultMaxContentLength)
	if message == "" {
		return
	}

	c.invoke(Event{Kind: KindToolCall, Message: message})
	fmt.Fprintln(c.sink(), c.panel("Tool Call", toolCallTextStyle.Render(message), toolCallBorderStyle))
}

// Error displays an error message and appends it to the error log. It is
// a reporting mechanism, not a fault handler: no recovery, no
// propagation.
func (c *Console) Error(message string) {
	message = CleanContent(message, DefaultMaxContentLength)
	if message == "" {
		return
	}

	c.invoke(Event{Kind: KindError, Message: message})
	fmt.Fprintln(c.sink(), c.panel("Error", errorTextStyle.Render(message), errorBorderStyle))
	c.errorLog = append(c.errorLog, message)
}

// Generating returns the rendered in-progress block instead of printing
// it, so a caller driving a live view can redraw it on every update.
// Empty content yields an empty placeholder panel. The title shows
// elapsed time when start is non-zero.
func (c *Console) Generating(content string, start time.Time) string {
	content = CleanContent(content, DefaultMaxContentLength)
	if content == "" {
		return generatingBorderStyle.Render("")
	}

	elapsed := ""
	if !start.IsZero() {
		elapsed = formatElapsed(time.Since(start))
	}

	c.invoke(Event{Kind: KindGenerating, Message: content, ElapsedTime: elapsed})

	title := "Generating..."
	if elapsed != "" {
		title += " " + elapsed
	}

	return c.panel(title, c.markdown(content), generatingBorderStyle)
}

func (c *Console) invoke(event Event) {
	if fn, ok := c.callbacks[event.Kind]; ok {
		fn(event)
	}
}

func (c *Console) sink() io.Writer {
	if c.writer != nil {
		return c.writer
	}

	return os.Stdout
}

func (c *Console) panel(title, body string, border lipgloss.Style) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		panelTitleStyle.Render(title),
		border.MaxWidth(c.width).Render(body),
	)
}

func (c *Console) markdown(content string) string {
	// Leave room for the panel border and padding.
	return renderMarkdown(content, c.width-4)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
