package framebridge

import (
	"fmt"
	"strings"
)

// globalDebug enables the node sanity checks below. Set with SetDebugMode.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, tree operations
// on disposed nodes panic and suspiciously deep trees log warnings.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("framebridge debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		sharedLogger.Warn().Int("depth", depth).Int("threshold", debugMaxTreeDepth).
			Str("node", n.Name).Msg("tree depth exceeds threshold")
	}
}

// FormatHierarchy renders the subtree under n as an indented outline, one
// node per line with its type and active state.
func FormatHierarchy(n *Node) string {
	var b strings.Builder
	var write func(*Node, int)
	write = func(n *Node, depth int) {
		state := "active"
		if !n.Active {
			state = "inactive"
		}
		fmt.Fprintf(&b, "%s%s [%s, %s]\n", strings.Repeat("  ", depth), n.Name, n.Type, state)
		for _, c := range n.children {
			write(c, depth+1)
		}
	}
	write(n, 0)
	return b.String()
}
