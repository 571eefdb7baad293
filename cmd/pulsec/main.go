// Command pulsec assembles a minimal line-oriented text format directly
// into an Arena and compiles it. This is a debug assembler over the
// composition graph's public surface, not the front-end algebra DSL: it
// has no loops, conditionals, or named bindings, matching this module's
// explicit exclusion of surface syntax from its scope.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/compiler"
	"github.com/kestrelsys/pulsegraph/core"
)

func main() {
	var (
		groupByBoard = flag.Bool("by-board", false, "Group output by board index")
		version      = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("pulsec - pulsegraph assembler/compiler v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <src.pgasm>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("open source: %v", err)
	}
	defer f.Close()

	a := arena.New()
	root, err := assemble(a, f)
	if err != nil {
		log.Fatalf("assemble: %v", err)
	}

	c, err := compiler.New(a, compiler.DefaultOptions())
	if err != nil {
		log.Fatalf("compiler init: %v", err)
	}

	if *groupByBoard {
		byBoard, err := c.CompileByBoard(root)
		if err != nil {
			log.Fatalf("compile: %v", err)
		}
		for board, events := range byBoard {
			fmt.Printf("# board %d\n", board)
			printEvents(events)
		}
		return
	}

	events, err := c.Compile(root)
	if err != nil {
		log.Fatalf("compile: %v", err)
	}
	printEvents(events)
}

func printEvents(events []compiler.Event) {
	for _, e := range events {
		fmt.Printf("%d\t%s\t0x%04x\t%x\n", e.Time, e.Channel, e.Opcode, e.Payload)
	}
}

// assemble reads the instruction format:
//
//	atomic <board_n> <local> <duration> <opcode> <hexpayload|->
//	seq <index...>
//	par <index...>
//
// index refers to the 0-based position, in file order, of a previously
// produced node. The last line's result becomes the compiled root.
func assemble(a *arena.Arena, f *os.File) (arena.NodeId, error) {
	var results []arena.NodeId
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := assembleLine(a, results, line)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		results = append(results, id)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("source produced no nodes")
	}
	return results[len(results)-1], nil
}

func assembleLine(a *arena.Arena, results []arena.NodeId, line string) (arena.NodeId, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty instruction")
	}

	switch fields[0] {
	case "atomic":
		return assembleAtomic(a, fields[1:])
	case "seq":
		ids, err := resolveIndices(results, fields[1:])
		if err != nil {
			return 0, err
		}
		return a.ComposeSequence(ids)
	case "par":
		ids, err := resolveIndices(results, fields[1:])
		if err != nil {
			return 0, err
		}
		return a.ParallelComposeMany(ids)
	default:
		return 0, fmt.Errorf("unknown instruction %q", fields[0])
	}
}

func assembleAtomic(a *arena.Arena, fields []string) (arena.NodeId, error) {
	if len(fields) != 5 {
		return 0, fmt.Errorf("atomic requires 5 fields: board local duration opcode payload")
	}
	local, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("local channel: %w", err)
	}
	ch, err := core.ParseBoardChannel(fields[0], uint16(local))
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	opcode, err := strconv.ParseUint(fields[3], 0, 16)
	if err != nil {
		return 0, fmt.Errorf("opcode: %w", err)
	}
	var payload []byte
	if fields[4] != "-" {
		payload, err = hex.DecodeString(fields[4])
		if err != nil {
			return 0, fmt.Errorf("payload: %w", err)
		}
	}
	return a.Atomic(ch, duration, uint16(opcode), payload), nil
}

func resolveIndices(results []arena.NodeId, fields []string) ([]arena.NodeId, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("requires at least one index")
	}
	ids := make([]arena.NodeId, len(fields))
	for i, field := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", field, err)
		}
		if idx < 0 || idx >= len(results) {
			return nil, fmt.Errorf("index %d out of range (0..%d)", idx, len(results)-1)
		}
		ids[i] = results[idx]
	}
	return ids, nil
}
