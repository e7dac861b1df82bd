// Command unwarp batch-decompiles a JSON bundle of function control-flow
// graphs into structured Lua-shaped statement trees, one goroutine per
// function.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/woojufon/ljd/ast"
	"github.com/woojufon/ljd/internal/logio"
	"github.com/woojufon/ljd/slotworks"
)

var log logio.Logger

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.SetOutput(os.Stderr)

	fs := flag.NewFlagSet("unwarp", flag.ContinueOnError)
	input := fs.String("input", "", "path to a function-bundle JSON file (required)")
	workers := fs.Int("workers", 0, "max functions to unwarp concurrently (0: unbounded)")
	warnBreaks := fs.Bool("warn-breaks", true, "log a warning for each break bound by the LIFO fallback heuristic")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		log.Errorf("missing required -input flag")
		return log.ExitCode()
	}

	if *warnBreaks {
		ast.SetBreakWarnLogger(&log)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Errorf("read %s: %+v", *input, err)
		return log.ExitCode()
	}

	var bundle []json.RawMessage
	if err := json.Unmarshal(data, &bundle); err != nil {
		log.Errorf("parse %s: %+v", *input, err)
		return log.ExitCode()
	}

	results := make([]string, len(bundle))

	var group errgroup.Group
	if *workers > 0 {
		group.SetLimit(*workers)
	}

	for i, raw := range bundle {
		i, raw := i, raw
		group.Go(func() error {
			name, text, err := unwarpOne(raw)
			if err != nil {
				log.Errorf("function %d (%s): %+v", i, name, err)
				return nil
			}
			results[i] = text
			return nil
		})
	}
	// group.Go never returns a non-nil error itself (failures are logged
	// and skipped above), so Wait only reports a programmer mistake.
	if err := group.Wait(); err != nil {
		log.Errorf("internal: %+v", err)
		return log.ExitCode()
	}

	for _, text := range results {
		if text != "" {
			fmt.Println(text)
		}
	}

	return log.ExitCode()
}

// unwarpOne runs the full pipeline -- decode, PrimaryPass, FinalPass,
// slot compaction, dump -- over a single function's bundle entry.
func unwarpOne(raw json.RawMessage) (name string, dump string, err error) {
	name, root, err := decodeFunction(raw)
	if err != nil {
		return name, "", err
	}

	if err := ast.PrimaryPass(root); err != nil {
		return name, "", err
	}
	if err := ast.FinalPass(root); err != nil {
		return name, "", err
	}

	ast.Walk(root, func(list *ast.StatementsList) {
		slotworks.EliminateTemporary(list)
	})

	return name, dumpFunction(name, root), nil
}
