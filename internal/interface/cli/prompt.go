package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Hbini/training-management-system/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPTER
// Reads and validates operator input line by line.
// ══════════════════════════════════════════════════════════════════════════════

// Prompter reads typed values from the terminal.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// ReadLine prompts for a single line and returns it trimmed.
// Returns io.EOF when the input stream is exhausted.
func (p *Prompter) ReadLine(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// ReadRequired re-prompts until a non-empty value is entered.
func (p *Prompter) ReadRequired(label string) (string, error) {
	for {
		value, err := p.ReadLine(label)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(p.out, "Value is required.")
	}
}

// ReadInt prompts for an integer. An empty line returns the default.
func (p *Prompter) ReadInt(label string, def int) (int, error) {
	for {
		value, err := p.ReadLine(fmt.Sprintf("%s [%d]", label, def))
		if err != nil {
			return 0, err
		}
		if value == "" {
			return def, nil
		}
		n, convErr := strconv.Atoi(value)
		if convErr != nil {
			fmt.Fprintln(p.out, "Enter a whole number.")
			continue
		}
		return n, nil
	}
}

// ReadFloat prompts for a decimal number.
func (p *Prompter) ReadFloat(label string) (float64, error) {
	for {
		value, err := p.ReadRequired(label)
		if err != nil {
			return 0, err
		}
		f, convErr := strconv.ParseFloat(value, 64)
		if convErr != nil {
			fmt.Fprintln(p.out, "Enter a number.")
			continue
		}
		return f, nil
	}
}

// ReadMoney prompts for an amount like "150.00" and returns cents.
func (p *Prompter) ReadMoney(label string) (int64, error) {
	for {
		value, err := p.ReadLine(label + " [0.00]")
		if err != nil {
			return 0, err
		}
		if value == "" {
			return 0, nil
		}
		f, convErr := strconv.ParseFloat(value, 64)
		if convErr != nil || f < 0 {
			fmt.Fprintln(p.out, "Enter a non-negative amount, e.g. 150.00.")
			continue
		}
		return int64(f*100 + 0.5), nil
	}
}

// ReadBool prompts for a yes/no answer.
func (p *Prompter) ReadBool(label string) (bool, error) {
	for {
		value, err := p.ReadLine(label + " (y/n)")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(value) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Answer y or n.")
	}
}

// ReadDate prompts for a date in YYYY-MM-DD format. An empty line
// returns today's date.
func (p *Prompter) ReadDate(label string) (time.Time, error) {
	for {
		value, err := p.ReadLine(label + " [today]")
		if err != nil {
			return time.Time{}, err
		}
		if value == "" {
			return timeutil.Today(), nil
		}
		t, parseErr := timeutil.ParseDate(value)
		if parseErr != nil {
			fmt.Fprintln(p.out, "Use YYYY-MM-DD format.")
			continue
		}
		return t, nil
	}
}

// ReadOptionalDate prompts for a date; an empty line returns nil.
func (p *Prompter) ReadOptionalDate(label string) (*time.Time, error) {
	for {
		value, err := p.ReadLine(label + " [skip]")
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, nil
		}
		t, parseErr := timeutil.ParseDate(value)
		if parseErr != nil {
			fmt.Fprintln(p.out, "Use YYYY-MM-DD format.")
			continue
		}
		return &t, nil
	}
}

// Choose prompts until one of the allowed options is entered.
// An empty line returns the first option.
func (p *Prompter) Choose(label string, options ...string) (string, error) {
	for {
		value, err := p.ReadLine(fmt.Sprintf("%s (%s)", label, strings.Join(options, "/")))
		if err != nil {
			return "", err
		}
		if value == "" {
			return options[0], nil
		}
		lower := strings.ToLower(value)
		for _, opt := range options {
			if lower == opt {
				return opt, nil
			}
		}
		fmt.Fprintf(p.out, "Choose one of: %s\n", strings.Join(options, ", "))
	}
}
