package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/hpn/hpn-assist/internal/adapter"
)

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// Endpoint is one route listed at startup.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// Endpoints lists the routes served by the chat service.
var Endpoints = []Endpoint{
	{"POST", "/api/chat", "Chat turn (normalized result)"},
	{"POST", "/chat", "Legacy chat (messages + expert_mode)"},
	{"POST", "/api/ai-chat", "Legacy single-message assistant"},
	{"GET", "/ws/chat/:chatId", "Real-time chat session"},
	{"POST", "/api/register", "Create an account"},
	{"POST", "/api/login", "Log in"},
	{"POST", "/api/upload", "Upload an attachment"},
	{"GET", "/health", "Provider and probe status"},
}

// Console writes styled startup and shutdown messages.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) println() {
	fmt.Fprintln(c.w)
}

// PrintStartupInfo prints the listen address and the active provider.
func (c *Console) PrintStartupInfo(addr, provider, model string) {
	c.println()
	infoBadge.Fprint(c.w, "[ASSIST]")
	fmt.Fprint(c.w, " Server starting on ")
	neonBlue.Fprintf(c.w, "http://%s\n", addr)

	infoBadge.Fprint(c.w, "[ASSIST]")
	fmt.Fprint(c.w, " Provider: ")
	accentText.Fprint(c.w, provider)
	fmt.Fprint(c.w, " | Model: ")
	successText.Fprintln(c.w, model)

	c.println()
	c.printEndpoints()
}

func (c *Console) printEndpoints() {
	mutedText.Fprintln(c.w, "  ┌──────────────────────────────────────────────────────────────────┐")
	for _, e := range Endpoints {
		mutedText.Fprint(c.w, "  │ ")
		if e.Method == "POST" {
			methodPOST.Fprintf(c.w, " %-4s ", e.Method)
		} else {
			methodGET.Fprintf(c.w, " %-4s ", e.Method)
		}
		fmt.Fprintf(c.w, " %-18s ", e.Path)
		mutedText.Fprintf(c.w, " %-36s", e.Description)
		mutedText.Fprintln(c.w, " │")
	}
	mutedText.Fprintln(c.w, "  └──────────────────────────────────────────────────────────────────┘")
	c.println()
}

// PrintProbe reports the outcome of the capability probe.
func (c *Console) PrintProbe(provider string, status adapter.ProbeStatus) {
	switch status.State {
	case adapter.ProbeAvailable:
		successBadge.Fprint(c.w, " PROBE OK ")
		fmt.Fprint(c.w, " ")
		successText.Fprintf(c.w, "%s model answered\n", provider)
	case adapter.ProbeUnavailable:
		errorBadge.Fprint(c.w, " PROBE FAILED ")
		fmt.Fprint(c.w, " ")
		errorText.Fprintln(c.w, status.Error)
		mutedText.Fprintln(c.w, "  chat requests are still served; check the model id and key")
	default:
		warningBadge.Fprint(c.w, "[PROBE]")
		warningText.Fprintf(c.w, " %s\n", status.State)
	}
}

// PrintShutdown prints a styled shutdown message.
func (c *Console) PrintShutdown() {
	c.println()
	warningBadge.Fprint(c.w, "[SHUTDOWN]")
	warningText.Fprintln(c.w, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func (c *Console) PrintGoodbye() {
	successBadge.Fprint(c.w, " OK ")
	fmt.Fprint(c.w, " ")
	successText.Fprintln(c.w, "Server stopped. Goodbye!")
}
