package trainer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
)

// Console is the interactive CommandSource: it prompts for a
// single-character command on every checkpoint and re-prompts on invalid
// input. The blocking read happens inside the controller's critical section,
// which is intentional: every other worker is parked at the rendezvous while
// the operator decides.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
	color   bool
}

// NewConsole reads whitespace-separated tokens from in and prompts on out.
// Rejections are colored when out is a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)

	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Console{scanner: scanner, out: out, color: color}
}

func (c *Console) Next() (Command, error) {
	for {
		fmt.Fprint(c.out, "Input: Print current weights, perform an Evaluation, or tRain for a number of repetitions? ")

		word, err := c.word()
		if err != nil {
			return Command{}, err
		}
		switch word {
		case "P":
			return Command{Kind: CommandPrint}, nil
		case "E":
			return Command{Kind: CommandEvaluate}, nil
		case "R":
			fmt.Fprint(c.out, "\nInput rep count: ")
			count, err := c.word()
			if err != nil {
				return Command{}, err
			}
			reps, perr := strconv.ParseInt(count, 10, 64)
			if perr != nil || reps < 0 {
				c.reject()
				continue
			}
			return Command{Kind: CommandTrain, Reps: reps}, nil
		default:
			c.reject()
		}
	}
}

func (c *Console) word() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *Console) reject() {
	if c.color {
		fmt.Fprint(c.out, "\x1b[1;31mInvalid input\x1b[0m\n")
		return
	}
	fmt.Fprintln(c.out, "Invalid input")
}
