// Package pulsegraph implements the core compiler for a hardware control
// sequence DSL: an arena-backed composition graph, the monoidal algebra
// over channel-scoped operation paths, a replay pass that validates
// hardware state transitions, and a compile pass that emits a sorted,
// time-stamped event stream.
//
// # Architecture Overview
//
// The compiler consists of several key components, each its own package:
//
//   - core: ChannelId addressing, the atomic step, MorphismPath, and the
//     shared error taxonomy.
//   - arena: the id-allocating, content-addressed node store every other
//     package builds on.
//   - morphism: BoundMorphism, the monoidal algebra (| and ⊗) over paths,
//     and ClosedMorphism, its replayed result.
//   - hwstate: the HardwareStateMachine collaborator interface plus a
//     worked TTL example machine.
//   - replay: walks a BoundMorphism's paths, validates them against a
//     hwstate.Machine, and materialises arena nodes.
//   - compiler: the post-order compile pass and its incremental cache.
//   - cmd: command-line tools (pulsec, pulserun, pulsebench) that drive
//     the packages above; they are not part of the core contract.
//
// # Basic Usage
//
//	a := arena.New()
//	ch := core.EncodeChannelID(0, 0)
//	bm := morphism.BoundMorphism{}
//	bm.Append(ch, 10, hwstate.OpTTLOn, nil)
//
//	r := replay.New(a, hwstate.NewTTLMachine())
//	closed, err := r.Call(bm, map[core.ChannelId]hwstate.State{ch: hwstate.TTLOff})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := compiler.New(a, compiler.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	events, err := c.Compile(closed.Root)
//
// Front-end surface syntax, the higher-level program DSL, hardware
// drivers, and persistence beyond the arena snapshot format are outside
// this module's scope; see SPEC_FULL.md.
package pulsegraph
