// Package ui prints the coloured console output shown when the server starts and stops.
package ui

import (
	"github.com/fatih/color"
)

// PrintBanner displays the ASCII art startup banner.
func (c *Console) PrintBanner(version string) {
	cyan := color.New(color.FgCyan, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	white := color.New(color.FgWhite)
	hiMagenta := color.New(color.FgHiMagenta)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	dim := color.New(color.FgHiBlack)

	rows := [][4]string{
		{"██╗  ██╗", "██████╗ ", "███╗   ██╗", " █████╗ ███████╗███████╗██╗███████╗████████╗"},
		{"██║  ██║", "██╔══██╗", "████╗  ██║", "██╔══██╗██╔════╝██╔════╝██║██╔════╝╚══██╔══╝"},
		{"███████║", "██████╔╝", "██╔██╗ ██║", "███████║███████╗███████╗██║███████╗   ██║   "},
		{"██╔══██║", "██╔═══╝ ", "██║╚██╗██║", "██╔══██║╚════██║╚════██║██║╚════██║   ██║   "},
		{"██║  ██║", "██║     ", "██║ ╚████║", "██║  ██║███████║███████║██║███████║   ██║   "},
		{"╚═╝  ╚═╝", "╚═╝     ", "╚═╝  ╚═══╝", "╚═╝  ╚═╝╚══════╝╚══════╝╚═╝╚══════╝   ╚═╝   "},
	}

	c.println()
	cyan.Fprintln(c.w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	for _, r := range rows {
		cyan.Fprint(c.w, "║  ")
		hiCyan.Fprint(c.w, r[0])
		white.Fprint(c.w, r[1])
		hiMagenta.Fprint(c.w, r[2])
		dim.Fprint(c.w, "  ")
		magenta.Fprint(c.w, r[3])
		cyan.Fprintln(c.w, "   ║")
	}
	cyan.Fprintln(c.w, "╠══════════════════════════════════════════════════════════════════════════════╣")
	cyan.Fprint(c.w, "║  ")
	yellow.Fprint(c.w, "NETWORK SUPPORT ASSISTANT")
	dim.Fprint(c.w, "  │  ")
	white.Fprintf(c.w, "%-10s", version)
	dim.Fprint(c.w, "                                  ")
	cyan.Fprintln(c.w, "║")
	cyan.Fprintln(c.w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	c.println()
}
