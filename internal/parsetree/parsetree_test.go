package parsetree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oreo-lang/oreoc/internal/token"
)

func Test_AddChild_setsParentAndLevel(t *testing.T) {
	root := NewNonTerminal("expression")
	child := NewNonTerminal("term")

	got := root.AddChild(child)

	assert.Same(t, child, got)
	assert.Same(t, root, child.Parent)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, []*Node{child}, root.Children)
}

func Test_AddChild_nestedLevels(t *testing.T) {
	root := NewNonTerminal("p")
	a := root.AddChild(NewNonTerminal("compound"))
	b := a.AddChild(NewNonTerminal("statement"))

	assert.Equal(t, 0, root.Level)
	assert.Equal(t, 1, a.Level)
	assert.Equal(t, 2, b.Level)
}

func Test_Child_and_HasChild(t *testing.T) {
	root := NewNonTerminal("statement")
	root.AddChild(NewNonTerminal("v"))
	semi := root.AddChild(NewTerminal(token.Token{Class: ";"}))

	assert.True(t, root.HasChild("v"))
	assert.False(t, root.HasChild("a"))
	assert.Same(t, semi, root.Child(";"))
	assert.Nil(t, root.Child("missing"))
}

func Test_HasAnyChild(t *testing.T) {
	root := NewNonTerminal("factor")
	root.AddChild(NewTerminal(token.Token{Class: "NOT"}))

	assert.True(t, root.HasAnyChild("TRUE", "FALSE", "NOT"))
	assert.False(t, root.HasAnyChild("TRUE", "FALSE"))
}

func Test_Attribute(t *testing.T) {
	leaf := NewTerminal(token.Token{Class: token.Number, Attribute: "10"})
	nonTerm := NewNonTerminal("expression")

	assert.Equal(t, "10", leaf.Attribute())
	assert.Equal(t, "", nonTerm.Attribute())
}

func Test_IsTerminal(t *testing.T) {
	assert.True(t, NewTerminal(token.Token{Class: token.ID}).IsTerminal())
	assert.False(t, NewNonTerminal("expression").IsTerminal())
}

func Test_Prune_removesMarkedChildren(t *testing.T) {
	root := NewNonTerminal("compound")
	keep1 := root.AddChild(NewNonTerminal("statement"))
	doomed := root.AddChild(NewNonTerminal("statement"))
	keep2 := root.AddChild(NewNonTerminal("statement"))
	doomed.Destroy = true

	root.Prune()

	assert.Equal(t, []*Node{keep1, keep2}, root.Children)
}

func Test_Prune_recursesIntoKeptChildren(t *testing.T) {
	root := NewNonTerminal("compound")
	stmt := root.AddChild(NewNonTerminal("statement"))
	grandchildDoomed := stmt.AddChild(NewNonTerminal("a"))
	grandchildKept := stmt.AddChild(NewNonTerminal("v"))
	grandchildDoomed.Destroy = true

	root.Prune()

	assert.Equal(t, []*Node{grandchildKept}, stmt.Children)
}

func Test_Walk_visitsPreOrder(t *testing.T) {
	root := NewNonTerminal("p")
	a := root.AddChild(NewNonTerminal("a"))
	b := root.AddChild(NewNonTerminal("b"))
	a.AddChild(NewNonTerminal("a1"))

	var seen []string
	root.Walk(func(n *Node) { seen = append(seen, n.Symbol) })

	assert.Equal(t, []string{"p", "a", "a1", "b"}, seen)
}

func Test_String_rendersIndentedTree(t *testing.T) {
	root := NewNonTerminal("statement")
	root.AddChild(NewTerminal(token.Token{Class: token.ID, Attribute: "x"}))

	got := root.String()

	assert.Equal(t, "statement\n  ID(x)\n", got)
}

func Test_PrintTree_omitsAnnotationsWhenCallbacksNil(t *testing.T) {
	root := NewNonTerminal("statement")
	root.AddChild(NewTerminal(token.Token{Class: token.ID, Attribute: "x"}))

	got := root.PrintTree(nil, nil)

	assert.Equal(t, root.String(), got)
}

func Test_PrintTree_appliesScopeAndTypeCallbacks(t *testing.T) {
	root := NewNonTerminal("a")
	id := root.AddChild(NewTerminal(token.Token{Class: token.ID, Attribute: "x"}))
	id.InferredType = "NUM"

	got := root.PrintTree(
		func(n *Node) string { return "" },
		func(n *Node) string {
			t, _ := n.InferredType.(string)
			return t
		},
	)

	assert.Equal(t, "a\n  ID(x) type=NUM\n", got)
}
