package jsast

// Children appends every non-nil child of n to dst in a fixed order. The
// order is part of the tool's determinism contract: Renumber and the
// analyzer's generic traversal both depend on it.
func Children(n *Node, dst []*Node) []*Node {
	if n == nil {
		return dst
	}
	for _, c := range []*Node{
		n.Object, n.Property, n.Callee, n.Left, n.Right,
		n.Test, n.Cons, n.Alt, n.Init, n.Update, n.Target,
		n.Key, n.Value, n.Super, n.Handler, n.Param, n.Finally,
		n.Argument, n.FnBody, n.Disc, n.BodyStmt,
	} {
		if c != nil {
			dst = append(dst, c)
		}
	}
	for _, list := range [][]*Node{n.Params, n.Body, n.Args, n.Elements} {
		for _, c := range list {
			if c != nil {
				dst = append(dst, c)
			}
		}
	}
	return dst
}

// Walk visits n and every descendant in pre-order. Returning false from
// visit prunes the subtree.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range Children(n, nil) {
		Walk(c, visit)
	}
}

// Renumber assigns pre-order NodeIDs starting at 1 and returns the number
// of nodes. Run after parsing and after loading a cached tree so that maps
// keyed by NodeID stay valid across cache round-trips.
func Renumber(root *Node) uint32 {
	var next NodeID = 1
	Walk(root, func(n *Node) bool {
		n.ID = next
		next++
		return true
	})
	return uint32(next - 1)
}
