package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes. Colors are disabled when stdout is not a terminal
// so piped output stays clean.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + reset
}

func tagged(color, tag, msg string) {
	fmt.Printf("%s %s\n", paint(color, fmt.Sprintf("[%s]", tag)), msg)
}

// Info logs a neutral progress message under a bracketed tag.
func Info(tag, msg string) {
	tagged(cyan, tag, msg)
}

// Success logs a completed-step message.
func Success(tag, msg string) {
	tagged(green, tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	tagged(yellow, tag, msg)
}

// Error logs a failure. Callers decide whether it is fatal.
func Error(tag, msg string) {
	tagged(red, tag, msg)
}

// Banner prints the startup header with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	line := strings.Repeat("=", 46)
	fmt.Println(paint(cyan, line))
	fmt.Println(paint(bold, fmt.Sprintf("  EVE Pathfinder %s", version)))
	fmt.Println(paint(dim, "  gate routing / capital jump planning"))
	fmt.Println(paint(cyan, line))
}

// Section prints an underlined heading used to group Stats lines.
func Section(title string) {
	fmt.Println()
	fmt.Println(paint(bold, title))
	fmt.Println(paint(dim, strings.Repeat("-", len(title))))
}

// Stats prints one aligned counter line under a Section heading.
func Stats(label string, value int) {
	fmt.Printf("  %-16s %d\n", label, value)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("\n%s http://%s\n\n", paint(green, "[Server] Listening on"), addr)
}
