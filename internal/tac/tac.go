// Package tac lowers a scope-annotated, type-checked parse tree into a
// flat three-address-code listing, per spec.md §4.6: two monotonic
// counters (temporaries, labels), post-order emission with the condition
// node compiled in its proper place for `if`/`while`, relational-operator
// normalisation, and temporary-variable elision on assignment.
package tac

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oreo-lang/oreoc/internal/parsetree"
	"github.com/oreo-lang/oreoc/internal/token"
)

// Op is a TAC operation name, already mapped from the source operator to
// its TAC spelling (e.g. source "AND" renders as "&&").
type Op string

const (
	OpCopy        Op = "copy"
	OpGoto        Op = "Goto"
	OpIfFalseGoto Op = "IfFalseGoto"
	OpNot         Op = "not"
	OpAdd         Op = "+"
	OpSub         Op = "-"
	OpMul         Op = "*"
	OpDiv         Op = "/"
	OpEq          Op = "=="
	OpLt          Op = "<"
	OpAnd         Op = "&&"
	OpOr          Op = "||"
	// OpRead is oreoc's own addition (SPEC_FULL.md §4.6's resolution of the
	// `get` open question): a zero-operand instruction meaning "read a
	// string from stdin", whose result feeds the usual assignment/elision
	// machinery exactly like any other computed value.
	OpRead Op = "Read"
)

// trueLiteral/falseLiteral: TAC itself has no boolean type, so TRUE/FALSE
// source literals become the integers 1 and 0.
const (
	trueLiteral  = 1
	falseLiteral = 0
)

// Operand is anything an instruction's Result/Arg1/Arg2 can hold: a
// Variable, a Label, or a Literal.
type Operand interface {
	operand()
	String() string
}

// Variable is a TAC variable: named (source identifier, `v_` prefix) or
// temporary (compiler-generated, `t_` prefix, monotonically numbered).
// Renaming a temporary in place (Name/Named both mutated) is how
// assignment elision works: every instruction already holding a pointer
// to this Variable picks up the new name for free.
type Variable struct {
	Name  string
	Named bool
}

func (*Variable) operand() {}

func (v *Variable) String() string {
	if v.Named {
		return "v_" + v.Name
	}
	return "t_" + v.Name
}

// Label is `L<n>_<tag>`.
type Label struct {
	Name string
}

func (Label) operand() {}

func (l Label) String() string { return l.Name }

// Literal is a NUMBER, STRING, TRUE or FALSE value baked directly into an
// instruction (STRING and bool-as-int render their own way).
type Literal struct {
	IsString bool
	Str      string
	Num      int
}

func (Literal) operand() {}

func (l Literal) String() string {
	if l.IsString {
		return `"` + l.Str + `"`
	}
	return strconv.Itoa(l.Num)
}

// NodeResult is what compiling an expression node yields: exactly one of
// a literal or a variable.
type NodeResult struct {
	literal  *Literal
	variable *Variable
}

func literalResult(l Literal) NodeResult  { return NodeResult{literal: &l} }
func variableResult(v *Variable) NodeResult { return NodeResult{variable: v} }

func (r NodeResult) IsLiteral() bool  { return r.literal != nil }
func (r NodeResult) IsVariable() bool { return r.variable != nil }

// Variable returns r's variable, or nil if r holds a literal.
func (r NodeResult) Variable() *Variable { return r.variable }

// Operand returns r as an instruction operand.
func (r NodeResult) Operand() Operand {
	if r.literal != nil {
		return *r.literal
	}
	return r.variable
}

// Instruction is one four-field TAC record. Arg2 is nil for copy, unary
// operators, Goto, IfFalseGoto and Read.
type Instruction struct {
	Result Operand
	Op     Op
	Arg1   Operand
	Arg2   Operand
}

func (*Instruction) entry() {}

// String renders one instruction per spec.md §4.6's output rules.
func (i *Instruction) String() string {
	switch i.Op {
	case OpCopy:
		return fmt.Sprintf("%s = %s;", i.Result, i.Arg1)
	case OpIfFalseGoto:
		return fmt.Sprintf("IfZ %s Goto %s;", i.Arg1, i.Result)
	case OpGoto:
		return fmt.Sprintf("Goto %s;", i.Result)
	case OpRead:
		return fmt.Sprintf("%s = Read;", i.Result)
	case OpNot:
		return fmt.Sprintf("%s = %s %s;", i.Result, i.Op, i.Arg1)
	default:
		return fmt.Sprintf("%s = %s %s %s;", i.Result, i.Arg1, i.Op, i.Arg2)
	}
}

// Entry is one line of a Program: a Label definition or an Instruction.
type Entry interface {
	entry()
}

func (Label) entry() {}

// Program is the linear TAC listing produced by Emit.
type Program struct {
	Entries []Entry
}

// String renders the whole program: labels flush-left with a trailing
// colon, instructions indented by one tab.
func (p *Program) String() string {
	var b strings.Builder
	for _, e := range p.Entries {
		switch v := e.(type) {
		case Label:
			b.WriteString(v.Name)
			b.WriteString(":\n")
		case *Instruction:
			b.WriteByte('\t')
			b.WriteString(v.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// emitter carries the per-compilation-unit state: the running program and
// the two monotonic counters, reset by construction in Emit.
type emitter struct {
	program      *Program
	tempCounter  int
	labelCounter int
}

// Emit lowers root (a "p" node, already scope- and type-annotated) to a
// fresh Program. Each call starts its own counters at zero, satisfying
// spec.md §3's "TAC variable and label counters reset at the start of
// each compilation unit."
func Emit(root *parsetree.Node) (*Program, error) {
	e := &emitter{program: &Program{}}

	compound := root.Child("compound")
	if compound == nil {
		return e.program, nil
	}
	if err := e.compile(compound); err != nil {
		return nil, err
	}
	return e.program, nil
}

var noResult = struct{}{}

func resultOf(n *parsetree.Node) NodeResult {
	if n == nil {
		return NodeResult{}
	}
	r, _ := n.TACResult.(NodeResult)
	return r
}

func setResult(n *parsetree.Node, r NodeResult) {
	n.TACResult = r
}

func hasResult(n *parsetree.Node) bool {
	return n.TACResult != nil
}

// compile is the post-order emission driver, mirroring spec.md §4.6: every
// node's children are compiled first, except "i" and "w", which control
// their own child order so labels land in the right place.
func (e *emitter) compile(node *parsetree.Node) error {
	if hasResult(node) {
		return nil
	}

	if node.Symbol == "i" {
		node.TACResult = noResult
		return e.compileIf(node)
	}
	if node.Symbol == "w" {
		node.TACResult = noResult
		return e.compileWhile(node)
	}

	for _, child := range node.Children {
		if err := e.compile(child); err != nil {
			return err
		}
	}

	if err := e.compileNode(node); err != nil {
		return err
	}

	if !hasResult(node) {
		node.TACResult = noResult
	}
	return nil
}

func (e *emitter) compileNode(node *parsetree.Node) error {
	switch {
	case node.Symbol == string(token.Number):
		n, _ := strconv.Atoi(node.Attribute())
		setResult(node, literalResult(Literal{Num: n}))

	case node.Symbol == string(token.String):
		setResult(node, literalResult(Literal{IsString: true, Str: node.Attribute()}))

	case node.Symbol == "TRUE":
		setResult(node, literalResult(Literal{Num: trueLiteral}))

	case node.Symbol == "FALSE":
		setResult(node, literalResult(Literal{Num: falseLiteral}))

	case node.Symbol == string(token.ID):
		setResult(node, variableResult(&Variable{Name: node.Attribute(), Named: true}))

	case node.Symbol == "term", node.Symbol == "factor", node.Symbol == "simple_expr",
		node.Symbol == "compare_expr":
		r, err := e.compileOptionalCombiner(node)
		if err != nil {
			return err
		}
		setResult(node, r)

	case node.Symbol == "bool":
		r, err := e.compileBool(node)
		if err != nil {
			return err
		}
		setResult(node, r)

	case node.Symbol == "expression":
		r, err := e.compileOptionalCombiner(node)
		if err != nil {
			return err
		}
		setResult(node, r)

	case node.Symbol == "a":
		if err := e.compileAssignment(node.Child(string(token.ID)), node.Child("expression")); err != nil {
			return err
		}

	case node.Symbol == "v" && node.HasChild("var_assign"):
		varAssign := node.Child("var_assign")
		if expr := varAssign.Child("expression"); expr != nil {
			if err := e.compileAssignment(node.Child(string(token.ID)), expr); err != nil {
				return err
			}
		}

	case node.Symbol == "pr" && node.HasChild("GET"):
		result := e.emitRead()
		e.finishAssignment(node.Child(string(token.ID)).Attribute(), result)
	}
	return nil
}

var combinerNames = []string{"and_or_b", "mul_div", "add_sub", "comp_e"}
var operandNames = []string{"bool", "term", "factor", "simple_expr", "compare_expr", "expression"}
var inheritNames = append([]string{string(token.Number), string(token.String), string(token.ID), "TRUE", "FALSE"}, operandNames...)

func firstChildByPriority(node *parsetree.Node, names []string) *parsetree.Node {
	for _, name := range names {
		if c := node.Child(name); c != nil {
			return c
		}
	}
	return nil
}

// compileOptionalCombiner implements the shared shape of
// term/factor/simple_expr/compare_expr/expression: either the node has an
// operator-bearing combiner child (and_or_b, mul_div, add_sub, comp_e) and
// needs code generated to combine two operands, or it simply inherits its
// result from whichever child actually carries one. "bool" has the same
// two-shape idea but its own dedicated compileBool, since its comparison
// operands (simple_expr, relative_operator, expression) sit directly under
// it rather than under a combiner child.
func (e *emitter) compileOptionalCombiner(node *parsetree.Node) (NodeResult, error) {
	if node.HasChild(string(token.IDParen)) {
		return NodeResult{}, fmt.Errorf("tac: function calls cannot be lowered to three-address code")
	}

	if b := node.Child("bool"); node.HasChild("NOT") && b != nil {
		return e.emitUnary(OpNot, resultOf(b)), nil
	}

	combiner := firstChildByPriority(node, combinerNames)
	if combiner == nil {
		return resultOf(firstChildByPriority(node, inheritNames)), nil
	}

	left := resultOf(firstChildByPriority(node, operandNames))

	var right NodeResult
	if firstChildByPriority(combiner, combinerNames) != nil {
		r, err := e.compileOptionalCombiner(combiner)
		if err != nil {
			return NodeResult{}, err
		}
		right = r
	} else {
		right = resultOf(firstChildByPriority(combiner, operandNames))
	}

	return e.compileCombinerOp(left, right, combiner)
}

// compileBool compiles "bool": a simple_expr, optionally directly followed
// by a relative_operator and a further expression (the parser's bool_tail
// wrapper is flattened out of the tree before this runs - see
// internal/syntax/syntax.go's flattenBoolTails). With no comparison, bool
// just inherits simple_expr's result; otherwise both operands are compiled
// and combined via compileRelOp.
func (e *emitter) compileBool(node *parsetree.Node) (NodeResult, error) {
	simple := resultOf(node.Child("simple_expr"))

	relOp := node.Child("relative_operator")
	if relOp == nil || len(relOp.Children) == 0 {
		return simple, nil
	}

	right := resultOf(node.Child("expression"))
	return e.compileRelOp(simple, right, relOp.Children[0].Symbol), nil
}

func (e *emitter) compileCombinerOp(left, right NodeResult, combiner *parsetree.Node) (NodeResult, error) {
	if relOp := combiner.Child("relative_operator"); relOp != nil && len(relOp.Children) > 0 {
		return e.compileRelOp(left, right, relOp.Children[0].Symbol), nil
	}

	opNode := firstChildByPriority(combiner, []string{"+", "-", "*", "/", "AND", "OR"})
	if opNode == nil {
		return NodeResult{}, fmt.Errorf("tac: combiner %q has no recognised operator", combiner.Symbol)
	}
	return e.emitBinary(binaryOpFor(opNode.Symbol), left, right), nil
}

func binaryOpFor(sourceOp string) Op {
	switch sourceOp {
	case "AND":
		return OpAnd
	case "OR":
		return OpOr
	default:
		return Op(sourceOp)
	}
}

// compileRelOp implements spec.md §4.6's comparison normalisation: `<`
// and `==` emit directly, `>` swaps operands and emits `<`, and `<=`/`>=`
// each expand into a strict comparison OR'd with an equality check.
func (e *emitter) compileRelOp(left, right NodeResult, relop string) NodeResult {
	switch relop {
	case "<", "==":
		return e.emitBinary(Op(relop), left, right)
	case ">":
		return e.emitBinary(OpLt, right, left)
	case "<=", ">=":
		strict := "<"
		if relop == ">=" {
			strict = ">"
		}
		strictResult := e.compileRelOp(left, right, strict)
		eqResult := e.compileRelOp(left, right, "==")
		return e.emitBinary(OpOr, strictResult, eqResult)
	default:
		return NodeResult{}
	}
}

// compileAssignment compiles exprNode, then assigns its result to
// idNode's name.
func (e *emitter) compileAssignment(idNode, exprNode *parsetree.Node) error {
	if err := e.compile(exprNode); err != nil {
		return err
	}
	e.finishAssignment(idNode.Attribute(), resultOf(exprNode))
	return nil
}

// finishAssignment performs spec.md §4.6's assignment rule: a literal or
// an already-named variable is copied into a fresh variable named for the
// target (its own value could change independently later); an unnamed
// temporary is instead renamed in place, eliding the copy.
func (e *emitter) finishAssignment(name string, rhs NodeResult) {
	if rhs.IsLiteral() || (rhs.IsVariable() && rhs.Variable().Named) {
		target := &Variable{Name: name, Named: true}
		e.append(&Instruction{Result: target, Op: OpCopy, Arg1: rhs.Operand()})
		return
	}

	rhs.Variable().Name = name
	rhs.Variable().Named = true
}

func (e *emitter) compileIf(node *parsetree.Node) error {
	cond := node.Child("bool")
	if err := e.compile(cond); err != nil {
		return err
	}

	falseLabel := e.newLabel("if_false")
	e.append(&Instruction{Result: falseLabel, Op: OpIfFalseGoto, Arg1: resultOf(cond).Operand()})

	if err := e.compile(node.Child("compound")); err != nil {
		return err
	}

	if elseNode := node.Child("optional_else"); elseNode != nil {
		endLabel := e.newLabel("else_end")
		e.append(&Instruction{Result: endLabel, Op: OpGoto})
		e.placeLabel(falseLabel)
		if err := e.compile(elseNode); err != nil {
			return err
		}
		e.placeLabel(endLabel)
	} else {
		e.placeLabel(falseLabel)
	}
	return nil
}

func (e *emitter) compileWhile(node *parsetree.Node) error {
	startLabel := e.newLabel("while_start")
	e.placeLabel(startLabel)

	cond := node.Child("bool")
	if err := e.compile(cond); err != nil {
		return err
	}

	endLabel := e.newLabel("while_end")
	e.append(&Instruction{Result: endLabel, Op: OpIfFalseGoto, Arg1: resultOf(cond).Operand()})

	if err := e.compile(node.Child("compound")); err != nil {
		return err
	}

	e.append(&Instruction{Result: startLabel, Op: OpGoto})
	e.placeLabel(endLabel)
	return nil
}

func (e *emitter) emitBinary(op Op, left, right NodeResult) NodeResult {
	result := e.newTemp()
	e.append(&Instruction{Result: result, Op: op, Arg1: left.Operand(), Arg2: right.Operand()})
	return variableResult(result)
}

func (e *emitter) emitUnary(op Op, arg NodeResult) NodeResult {
	result := e.newTemp()
	e.append(&Instruction{Result: result, Op: op, Arg1: arg.Operand()})
	return variableResult(result)
}

func (e *emitter) emitRead() NodeResult {
	result := e.newTemp()
	e.append(&Instruction{Result: result, Op: OpRead})
	return variableResult(result)
}

func (e *emitter) append(i *Instruction) {
	e.program.Entries = append(e.program.Entries, i)
}

func (e *emitter) placeLabel(l Label) {
	e.program.Entries = append(e.program.Entries, l)
}

func (e *emitter) newTemp() *Variable {
	e.tempCounter++
	return &Variable{Name: strconv.Itoa(e.tempCounter)}
}

func (e *emitter) newLabel(tag string) Label {
	e.labelCounter++
	return Label{Name: fmt.Sprintf("L%d_%s", e.labelCounter, tag)}
}
