// Command pulserun loads a serialized arena snapshot, as written by
// arena.Arena.Serialize or SerializeGob, and compiles a chosen root node,
// printing the resulting event stream.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/compiler"
)

func main() {
	var (
		root         = flag.Int("root", -1, "Root NodeId to compile (defaults to the last node in the arena)")
		groupByBoard = flag.Bool("by-board", false, "Group output by board index")
		useGob       = flag.Bool("gob", false, "Read the snapshot as encoding/gob rather than the compact binary format")
		cacheSize    = flag.Int("cache", 0, "Incremental cache capacity; 0 disables caching")
		version      = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("pulserun - pulsegraph snapshot runner v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <snapshot.pgb>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("read snapshot: %v", err)
	}

	var a *arena.Arena
	if *useGob {
		a, err = arena.DeserializeGob(data)
	} else {
		a, err = arena.Deserialize(data)
	}
	if err != nil {
		log.Fatalf("deserialize: %v", err)
	}

	rootId := arena.NodeId(*root)
	if *root < 0 {
		rootId = arena.NodeId(a.NodeCount() - 1)
	}

	opts := compiler.DefaultOptions()
	opts.EnableIncrementalCache = *cacheSize > 0
	opts.CacheCapacity = *cacheSize

	c, err := compiler.New(a, opts)
	if err != nil {
		log.Fatalf("compiler init: %v", err)
	}

	if *groupByBoard {
		byBoard, err := c.CompileByBoard(rootId)
		if err != nil {
			log.Fatalf("compile: %v", err)
		}
		for board, events := range byBoard {
			fmt.Printf("# board %d\n", board)
			for _, e := range events {
				fmt.Printf("%d\t%s\t0x%04x\t%x\n", e.Time, e.Channel, e.Opcode, e.Payload)
			}
		}
		return
	}

	events, err := c.Compile(rootId)
	if err != nil {
		log.Fatalf("compile: %v", err)
	}
	for _, e := range events {
		fmt.Printf("%d\t%s\t0x%04x\t%x\n", e.Time, e.Channel, e.Opcode, e.Payload)
	}
}
