// Package main is a small demonstration binary for the piece-tree
// engine: it loads initial content, runs a scripted sequence of
// mutations against it, and prints the resulting text, pieces and
// diffs at each step. It is not a document façade or an editor — just
// enough to exercise engine.PieceTree's public API end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tidwall/pretty"

	"github.com/textmodel/piecetree/internal/engine"
	"github.com/textmodel/piecetree/internal/engine/diff"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	text := opts.text
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", opts.file, err)
			return 1
		}
		text = string(data)
	}

	pieceOpts := []engine.Option{engine.WithTabWidth(opts.tabWidth)}
	if text != "" {
		pieceOpts = append(pieceOpts, engine.WithInitialText(text))
	}
	if opts.readOnly {
		pieceOpts = append(pieceOpts, engine.WithReadOnly())
	}
	pt := engine.New(pieceOpts...)

	if opts.readOnly {
		fmt.Println("# read-only tree: the demo script only runs queries")
		dump(pt, opts)
		return 0
	}

	steps := demoScript(pt)
	for _, step := range steps {
		diffs, err := step.run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", step.label, err)
			return 1
		}
		fmt.Printf("== %s ==\n", step.label)
		printDiffs(diffs)
		fmt.Printf("text: %q\n\n", pt.GetText())
	}

	dump(pt, opts)
	return 0
}

type step struct {
	label string
	run   func() ([]diff.Diff, error)
}

// demoScript builds a fixed sequence of mutations exercising insert,
// format, delete and undo/redo against pt.
func demoScript(pt *engine.PieceTree) []step {
	return []step{
		{"insert greeting", func() ([]diff.Diff, error) {
			return pt.Insert(pt.GetLength(), "Hello, World!\n", nil)
		}},
		{"insert second line", func() ([]diff.Diff, error) {
			return pt.Insert(pt.GetLength(), "Goodbye.\n", nil)
		}},
		{"bold the greeting", func() ([]diff.Diff, error) {
			return pt.FormatText(0, 13, map[string]any{"bold": true})
		}},
		{"delete the comma", func() ([]diff.Diff, error) {
			return pt.Delete(5, 1)
		}},
		{"undo the delete", func() ([]diff.Diff, error) {
			return pt.Undo()
		}},
		{"redo the delete", func() ([]diff.Diff, error) {
			return pt.Redo()
		}},
	}
}

func printDiffs(diffs []diff.Diff) {
	if len(diffs) == 0 {
		fmt.Println("diffs: (none)")
		return
	}
	fmt.Print("diffs: ")
	for i, d := range diffs {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("{%s %d}", d.Type, d.LineNumber)
	}
	fmt.Println()
}

func dump(pt *engine.PieceTree, opts options) {
	fmt.Printf("final text: %q\n", pt.GetText())
	fmt.Printf("line count: %d\n", pt.GetLineCount())
	fmt.Printf("length: %d\n", pt.GetLength())

	pieces := pt.GetPieces()
	fmt.Printf("pieces: %d\n", len(pieces))

	if !opts.dumpMeta {
		return
	}
	for i, p := range pieces {
		if p.Meta == nil {
			continue
		}
		b, err := json.Marshal(p.Meta)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: marshal piece %d meta: %v\n", i, err)
			continue
		}
		fmt.Printf("piece %d meta:\n%s\n", i, pretty.Pretty(b))
	}
}

type options struct {
	text     string
	file     string
	readOnly bool
	tabWidth int
	dumpMeta bool
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.text, "text", "", "Literal initial text")
	flag.StringVar(&opts.file, "file", "", "Path to a file of initial text")
	flag.BoolVar(&opts.readOnly, "readonly", false, "Open the tree read-only (skips the mutation script)")
	flag.IntVar(&opts.tabWidth, "tab-width", engine.DefaultTabWidth, "Tab width recorded on the tree")
	flag.BoolVar(&opts.dumpMeta, "dump-meta", false, "Pretty-print each piece's metadata after the script runs")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "piecetree-cli - piece-tree engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: piecetree-cli [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  piecetree-cli                       Run the demo script against an empty tree\n")
		fmt.Fprintf(os.Stderr, "  piecetree-cli -file notes.txt       Seed the tree from a file first\n")
		fmt.Fprintf(os.Stderr, "  piecetree-cli -dump-meta            Also print each piece's metadata\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Println("piecetree-cli (dev)")
		os.Exit(0)
	}
	if opts.text != "" && opts.file != "" {
		fmt.Fprintln(os.Stderr, "Error: -text and -file are mutually exclusive")
		os.Exit(1)
	}

	return opts
}
