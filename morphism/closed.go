package morphism

import (
	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/core"
)

// ClosedMorphism is a BoundMorphism after replay: a verified, arena-
// resident root node plus the hardware state each channel ended in.
// Compiling a ClosedMorphism is the compiler package's job (Compiler.Compile
// / CompileByBoard take Root directly); this package does not import
// compiler.
type ClosedMorphism struct {
	Root      arena.NodeId
	EndStates map[core.ChannelId]any
}
