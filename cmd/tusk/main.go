// Tusk CLI - the main entry point for running and compiling Tusk programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/tusk-lang/tusk/manifest"
	"github.com/tusk-lang/tusk/pkg/ast"
	"github.com/tusk-lang/tusk/pkg/backend"
	"github.com/tusk-lang/tusk/pkg/bytecode"
	"github.com/tusk-lang/tusk/pkg/cache"
	"github.com/tusk-lang/tusk/pkg/lexer"
	"github.com/tusk-lang/tusk/pkg/object"
	"github.com/tusk-lang/tusk/pkg/parser"
	"github.com/tusk-lang/tusk/pkg/repl"
	"github.com/tusk-lang/tusk/pkg/vm"
)

var log = commonlog.GetLogger("tusk")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	eval := flag.String("e", "", "Evaluate a one-line program and print its value")
	backendName := flag.String("backend", "", "Execution backend: vm or treewalk (default from tusk.toml, else vm)")
	compile := flag.Bool("c", false, "Compile to a .tkc bundle instead of running")
	output := flag.String("o", "", "Output path for -c (default: input with .tkc extension)")
	disasm := flag.Bool("d", false, "Print the compiled chunk's disassembly instead of running")
	noCache := flag.Bool("no-cache", false, "Skip the compiled-chunk cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tusk [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a .tusk source file or a compiled .tkc bundle.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tusk -i                      # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  tusk script.tusk             # Run a script\n")
		fmt.Fprintf(os.Stderr, "  tusk -e '1 + 2'              # Evaluate an expression\n")
		fmt.Fprintf(os.Stderr, "  tusk -c script.tusk          # Compile to script.tkc\n")
		fmt.Fprintf(os.Stderr, "  tusk -d script.tusk          # Show disassembly\n")
		fmt.Fprintf(os.Stderr, "  tusk -backend treewalk x.tusk  # Force the tree-walking backend\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	// Project manifest, if any, supplies defaults
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fatalf("Error loading tusk.toml: %v", err)
	}
	if m != nil && m.Project.Name != "" {
		log.Infof("project %s %s (%s)", m.Project.Name, m.Project.Version, m.Dir)
	}
	if *backendName == "" {
		if m != nil {
			*backendName = m.Build.Backend
		} else {
			*backendName = "vm"
		}
	}

	if *eval != "" {
		runSource("<eval>", []byte(*eval), *backendName, true)
		return
	}

	// With no file argument, a manifest entry point runs; otherwise the REPL
	// starts. -i forces the REPL.
	var path string
	switch {
	case flag.NArg() > 0 && !*interactive:
		path = resolvePath(flag.Arg(0), m)
	case !*interactive && m != nil && m.EntryPath() != "":
		path = m.EntryPath()
	default:
		b := backend.Select(*backendName)
		tty := isatty.IsTerminal(os.Stdin.Fd())
		repl.Start(os.Stdin, os.Stdout, b, tty)
		return
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fatalf("Error reading %s: %v", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".tkc"):
		runBundle(path, source)
	case *compile:
		out := *output
		if out == "" && m != nil {
			out = m.OutputPath()
		}
		compileToBundle(path, source, out)
	case *disasm:
		disassemble(path, source)
	default:
		runFile(path, source, *backendName, m, *noCache)
	}
}

// resolvePath resolves a file argument, searching the manifest's source dirs
// when the path does not exist as given.
func resolvePath(arg string, m *manifest.Manifest) string {
	if _, err := os.Stat(arg); err == nil || m == nil {
		return arg
	}
	if path, ok := m.ResolveSource(arg); ok {
		return path
	}
	return arg
}

// parse parses source, printing every collected error and exiting on failure.
func parse(name string, source []byte) *ast.Program {
	p := parser.New(lexer.New(string(source)))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d parser error(s):\n", name, len(errs))
		for _, msg := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		os.Exit(1)
	}
	return program
}

func runSource(name string, source []byte, backendName string, printResult bool) {
	program := parse(name, source)
	b := backend.Select(backendName)
	result, err := b.Run(program)
	if err != nil {
		fatalf("%v", err)
	}
	if printResult && result != nil && result.Type() != object.NullType {
		fmt.Println(result.Inspect())
	}
}

// runFile executes a source file. With the VM backend the compiled chunk is
// looked up in (and stored to) the project cache keyed by source hash.
func runFile(path string, source []byte, backendName string, m *manifest.Manifest, noCache bool) {
	if backendName == "treewalk" {
		runSource(path, source, backendName, false)
		return
	}

	program := parse(path, source)

	chunk, err := compileWithCache(program, source, m, noCache)
	if err != nil {
		if errors.Is(err, bytecode.ErrUnsupported) {
			log.Infof("%s: %s; using tree-walking backend", path, err)
			b := backend.NewTreeWalk()
			if _, err := b.Run(program); err != nil {
				fatalf("%v", err)
			}
			return
		}
		fatalf("%s: compilation error: %v", path, err)
	}

	machine := vm.New(chunk)
	if err := machine.Run(); err != nil {
		fatalf("%s: runtime error: %v", path, err)
	}
}

// compileWithCache compiles the program, consulting the SQLite chunk cache
// when the project manifest configures one.
func compileWithCache(program *ast.Program, source []byte, m *manifest.Manifest, noCache bool) (*bytecode.Chunk, error) {
	var store *cache.Cache
	if !noCache && m != nil && m.Build.Cache != "" {
		var err error
		store, err = cache.Open(m.Build.Cache)
		if err != nil {
			log.Errorf("cannot open chunk cache: %s", err)
		} else {
			defer store.Close()
		}
	}

	if store != nil {
		if chunk, err := store.Get(source); err == nil {
			log.Debugf("chunk cache hit for %s", cache.Key(source)[:12])
			return chunk, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Errorf("chunk cache read failed: %s", err)
		}
	}

	compiler := bytecode.NewCompiler()
	if err := compiler.Compile(program); err != nil {
		return nil, err
	}
	chunk := compiler.Bytecode()

	if store != nil {
		if err := store.Put(source, chunk); err != nil {
			log.Errorf("chunk cache write failed: %s", err)
		}
	}
	return chunk, nil
}

func compileToBundle(path string, source []byte, output string) {
	program := parse(path, source)

	compiler := bytecode.NewCompiler()
	if err := compiler.Compile(program); err != nil {
		fatalf("%s: compilation error: %v", path, err)
	}

	bundle, err := bytecode.NewBundle(compiler.Bytecode(), source)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	data, err := bytecode.MarshalBundle(bundle)
	if err != nil {
		fatalf("%s: %v", path, err)
	}

	if output == "" {
		output = strings.TrimSuffix(path, ".tusk") + ".tkc"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		fatalf("Error writing %s: %v", output, err)
	}
	log.Infof("wrote %s (build %s, %d bytes)", output, bundle.BuildID, len(data))
}

func runBundle(path string, data []byte) {
	bundle, err := bytecode.UnmarshalBundle(data)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	chunk, err := bundle.OpenChunk()
	if err != nil {
		fatalf("%s: %v", path, err)
	}

	machine := vm.New(chunk)
	if err := machine.Run(); err != nil {
		fatalf("%s: runtime error: %v", path, err)
	}
}

func disassemble(path string, source []byte) {
	program := parse(path, source)

	compiler := bytecode.NewCompiler()
	if err := compiler.Compile(program); err != nil {
		fatalf("%s: compilation error: %v", path, err)
	}
	fmt.Print(compiler.Bytecode().Disassemble())
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
