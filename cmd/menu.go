package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"setup-station/internal/installer"
	"setup-station/internal/logger"
)

// errInvalidChoice marks menu input that should re-prompt rather than
// abort the run.
var errInvalidChoice = errors.New("invalid choice")

// runMenu loops over the interactive numbered menu until the user quits.
// Invalid input re-prompts; a failing step aborts the whole run, same as
// the flag entry point.
func runMenu(ctx *installer.Context, in io.Reader, out io.Writer) error {
	steps := installer.Steps()
	scanner := bufio.NewScanner(in)

	for {
		printMenu(out, steps)

		if !scanner.Scan() {
			return scanner.Err()
		}
		choice := strings.TrimSpace(scanner.Text())

		switch choice {
		case "q", "quit", "exit":
			return nil
		case "a", "all":
			return installer.RunSteps(ctx, steps)
		}

		idx, err := parseMenuChoice(choice, len(steps))
		if err != nil {
			logger.Warn("[WARN] %v. Enter 1-%d, 'a' for all or 'q' to quit.\n", err, len(steps))
			continue
		}
		if err := installer.RunSteps(ctx, steps[idx:idx+1]); err != nil {
			return err
		}
	}
}

// printMenu writes the numbered step list with the all/quit choices.
func printMenu(out io.Writer, steps []installer.Step) {
	fmt.Fprintf(out, "\nsetup-station\n=============\n")
	for i, s := range steps {
		fmt.Fprintf(out, "  %2d. %-10s %s\n", i+1, s.Name, s.Summary)
	}
	fmt.Fprintf(out, "   a. all        Run every step in order\n")
	fmt.Fprintf(out, "   q. quit\n\nChoice: ")
}

// parseMenuChoice converts a 1-based menu entry into a step index.
func parseMenuChoice(input string, max int) (int, error) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidChoice, input)
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("%w: %d is out of range", errInvalidChoice, n)
	}
	return n - 1, nil
}
