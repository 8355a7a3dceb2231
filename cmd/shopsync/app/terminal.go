package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dkstudio/shopsync/internal/reconcile"
)

// TerminalChooser asks the operator to pick a listing from ranked
// candidates on the terminal. Pressing enter without a number skips the
// folder.
type TerminalChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalChooser returns a chooser reading stdin and writing stderr,
// keeping stdout clean for command output.
func NewTerminalChooser() *TerminalChooser {
	return &TerminalChooser{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

// Choose presents the candidates and reads the operator's pick.
func (c *TerminalChooser) Choose(productName string, candidates []reconcile.Candidate) (reconcile.Candidate, bool, error) {
	fmt.Fprintf(c.out, "\nNo listing matched %q. Closest titles:\n", productName)
	for i, cand := range candidates {
		fmt.Fprintf(c.out, "  %d) %s (listing %s, %.0f%%)\n", i+1, cand.Title, cand.ListingID, cand.Score*100)
	}
	fmt.Fprintf(c.out, "Pick 1-%d, or press enter to skip: ", len(candidates))

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return reconcile.Candidate{}, false, nil
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return reconcile.Candidate{}, false, nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(candidates) {
		fmt.Fprintln(c.out, "Not a listed number; skipping.")
		return reconcile.Candidate{}, false, nil
	}
	return candidates[n-1], true, nil
}

// TerminalConfirmer asks yes/no questions on the terminal. Anything other
// than an explicit yes declines.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer returns a confirmer reading stdin and writing
// stderr.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

// Confirm prints the prompt and reads one line.
func (c *TerminalConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var (
	_ reconcile.Chooser   = (*TerminalChooser)(nil)
	_ reconcile.Confirmer = (*TerminalConfirmer)(nil)
)
