// Package repl implements the interactive read-eval-print loop.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tusk-lang/tusk/pkg/backend"
	"github.com/tusk-lang/tusk/pkg/lexer"
	"github.com/tusk-lang/tusk/pkg/object"
	"github.com/tusk-lang/tusk/pkg/parser"
)

const prompt = ">> "

// Start runs the REPL until EOF. When interactive is false (stdin is not a
// terminal) the prompt is suppressed so piped input produces clean output.
func Start(in io.Reader, out io.Writer, b backend.Backend, interactive bool) {
	scanner := bufio.NewScanner(in)

	if interactive {
		fmt.Fprintf(out, "Tusk REPL (%s backend). Ctrl-D to exit.\n", b.Name())
	}

	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		p := parser.New(lexer.New(line))
		program := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			printParserErrors(out, errs)
			continue
		}

		result, err := b.Run(program)
		if err != nil {
			fmt.Fprintf(out, "%s\n", err)
			continue
		}
		if result != nil && result.Type() != object.NullType {
			fmt.Fprintf(out, "%s\n", result.Inspect())
		}
	}
}

func printParserErrors(out io.Writer, errors []string) {
	fmt.Fprintln(out, "parser errors:")
	for _, msg := range errors {
		fmt.Fprintf(out, "  %s\n", msg)
	}
}
