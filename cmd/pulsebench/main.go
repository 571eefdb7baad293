// Command pulsebench builds a deep serial chain on one channel and
// compiles it with and without the incremental cache enabled, reporting
// timing and node counts for each.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/compiler"
	"github.com/kestrelsys/pulsegraph/core"
)

func main() {
	var (
		depth   = flag.Int("n", 1000, "Number of atomics in the serial chain")
		version = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("pulsebench - pulsegraph compile benchmark v1.0.0")
		return
	}

	fmt.Printf("depth=%d\n", *depth)
	runOnce("uncached", *depth, false)
	runOnce("cached", *depth, true)
}

func runOnce(label string, depth int, enableCache bool) {
	a := arena.New()
	ch := core.EncodeChannelID(0, 0)
	ids := make([]arena.NodeId, depth)
	for i := 0; i < depth; i++ {
		ids[i] = a.Atomic(ch, 1, uint16(i%256), nil)
	}

	buildStart := time.Now()
	root, err := a.ComposeSequence(ids)
	if err != nil {
		fmt.Printf("%s: build failed: %v\n", label, err)
		return
	}
	buildElapsed := time.Since(buildStart)

	opts := compiler.DefaultOptions()
	opts.EnableIncrementalCache = enableCache
	c, err := compiler.New(a, opts)
	if err != nil {
		fmt.Printf("%s: compiler init failed: %v\n", label, err)
		return
	}

	compileStart := time.Now()
	events, err := c.Compile(root)
	if err != nil {
		fmt.Printf("%s: compile failed: %v\n", label, err)
		return
	}
	compileElapsed := time.Since(compileStart)

	fmt.Printf("%s: build=%v compile=%v events=%d nodes=%d\n",
		label, buildElapsed, compileElapsed, len(events), a.NodeCount())
}
