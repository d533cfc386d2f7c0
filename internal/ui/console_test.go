package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/hpn/hpn-assist/internal/adapter"
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	return NewConsole(&buf), &buf
}

func TestPrintStartupInfo(t *testing.T) {
	c, buf := newTestConsole(t)

	c.PrintStartupInfo("0.0.0.0:8000", "together", "deepseek-ai/DeepSeek-R1-Distill-Llama-70B-free")

	out := buf.String()
	for _, want := range []string{"http://0.0.0.0:8000", "Provider: together", "DeepSeek-R1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, e := range Endpoints {
		if !strings.Contains(out, e.Path) {
			t.Errorf("endpoint %s not listed", e.Path)
		}
	}
}

func TestPrintProbe(t *testing.T) {
	tests := []struct {
		status adapter.ProbeStatus
		want   string
	}{
		{adapter.ProbeStatus{State: adapter.ProbeAvailable}, "PROBE OK"},
		{adapter.ProbeStatus{State: adapter.ProbeUnavailable, Error: "model missing"}, "model missing"},
		{adapter.ProbeStatus{State: adapter.ProbePending}, "pending"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status.State), func(t *testing.T) {
			c, buf := newTestConsole(t)
			c.PrintProbe("huggingface", tt.status)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestBannerAndShutdown(t *testing.T) {
	c, buf := newTestConsole(t)

	c.PrintBanner("v0.1.0")
	c.PrintShutdown()
	c.PrintGoodbye()

	out := buf.String()
	for _, want := range []string{"NETWORK SUPPORT ASSISTANT", "v0.1.0", "Graceful shutdown", "Goodbye"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
