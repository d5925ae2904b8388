package codegen

// treeNode is implemented by the tree-shaped type representations of this package
// (TypeExpression on the source side, TSType on the target side).
type treeNode[N any] interface {
	Children() []N
}

// Walk visits n and its descendants in pre-order. Returning false from visit skips the
// children of the current node.
func Walk[N treeNode[N]](n N, visit func(N) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}
