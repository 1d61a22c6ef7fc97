package vm

import (
	"fmt"

	"github.com/coregx/retriad/ast"
)

// Compile turns an ast.Tree directly into bytecode, per spec.md §4.7.
// Unlike nfa.Build/dfa.Build, it never builds an intermediate graph: each
// AST node is compiled to a linear run of instructions, with quantifiers
// emitting Split-based backtrack points rather than NFA branch nodes.
func Compile(tree *ast.Tree) (*Program, error) {
	c := &compiler{}
	if err := c.compile(tree.Root); err != nil {
		return nil, err
	}
	c.emit(Instr{Op: OpSuccess})

	failPC := c.emit(Instr{Op: OpFail})
	for _, idx := range c.pendingFailJumps {
		c.instrs[idx].A = failPC
	}

	return &Program{Instrs: c.instrs, Sets: c.sets, CaptureCount: tree.CaptureCount}, nil
}

type compiler struct {
	instrs           []Instr
	sets             [][]SetRange
	pendingFailJumps []int
}

func (c *compiler) emit(i Instr) int {
	idx := len(c.instrs)
	c.instrs = append(c.instrs, i)
	return idx
}

func (c *compiler) compile(n *ast.Node) error {
	switch n.Kind {
	case ast.CaptureGroup:
		c.emit(Instr{Op: OpCaptureStart, Capture: n.CaptureIndex})
		if err := c.compileSequence(n.Children); err != nil {
			return err
		}
		c.emit(Instr{Op: OpCaptureEnd, Capture: n.CaptureIndex})
	case ast.NonCaptureGroup:
		return c.compileSequence(n.Children)
	case ast.Union:
		return c.compileUnion(n.Children)
	case ast.IncludeSet:
		c.compileSet(n, false)
	case ast.ExcludeSet:
		c.compileSet(n, true)
	case ast.Star:
		return c.compileStar(n)
	case ast.Plus:
		return c.compilePlus(n)
	case ast.Option:
		return c.compileOption(n)
	case ast.Repeat:
		return c.compileRepeat(n)
	case ast.MatchAny:
		c.emit(Instr{Op: OpMatchCharAny})
	case ast.MatchChar:
		c.emit(Instr{Op: OpMatchChar, Char: n.Lo})
	case ast.PositionSOL:
		c.emit(Instr{Op: OpMatchPosSOL})
	case ast.PositionEOL:
		c.emit(Instr{Op: OpMatchPosEOL})
	default:
		return fmt.Errorf("vm: unhandled ast.Kind %v", n.Kind)
	}
	return nil
}

func (c *compiler) compileSequence(children []*ast.Node) error {
	for _, child := range children {
		if err := c.compile(child); err != nil {
			return err
		}
	}
	return nil
}

// compileUnion chains 2-way Splits: Split(branch_i, nextSplit), with
// every non-last branch followed by a Jmp patched to the end once the
// whole alternation has been compiled.
func (c *compiler) compileUnion(branches []*ast.Node) error {
	var jmps []int
	for i, br := range branches {
		if i == len(branches)-1 {
			if err := c.compile(br); err != nil {
				return err
			}
			continue
		}
		splitIdx := c.emit(Instr{Op: OpSplit})
		aTarget := len(c.instrs)
		if err := c.compile(br); err != nil {
			return err
		}
		jmps = append(jmps, c.emit(Instr{Op: OpJmp}))
		bTarget := len(c.instrs)
		c.instrs[splitIdx].A = aTarget
		c.instrs[splitIdx].B = bTarget
	}
	end := len(c.instrs)
	for _, j := range jmps {
		c.instrs[j].A = end
	}
	return nil
}

func (c *compiler) compileSet(n *ast.Node, exclude bool) {
	ranges := make([]SetRange, len(n.Children))
	for i, ch := range n.Children {
		if ch.Kind == ast.MatchRange {
			ranges[i] = SetRange{Lo: ch.Lo, Hi: ch.Hi}
		} else {
			ranges[i] = SetRange{Lo: ch.Lo, Hi: ch.Lo}
		}
	}
	idx := len(c.sets)
	c.sets = append(c.sets, ranges)

	op := OpCheckInclude
	if exclude {
		op = OpCheckExclude
	}
	c.emit(Instr{Op: op, SetIndex: idx})
	jidx := c.emit(Instr{Op: OpJmpIfFalse})
	c.pendingFailJumps = append(c.pendingFailJumps, jidx)
	c.emit(Instr{Op: OpSeek})
}

// compileStar: Split(body,end); body; Jmp split; end. Order of the
// split's two targets is swapped for non-greedy, so the backtrack stack
// tries the other alternative first.
func (c *compiler) compileStar(n *ast.Node) error {
	splitIdx := c.emit(Instr{Op: OpSplit})
	bodyTarget := len(c.instrs)
	if err := c.compile(n.Child()); err != nil {
		return err
	}
	c.emit(Instr{Op: OpJmp, A: splitIdx})
	endTarget := len(c.instrs)
	setGreedyTargets(&c.instrs[splitIdx], n.Greedy, bodyTarget, endTarget)
	return nil
}

// compilePlus: body; Split(body,end); end. Forces one mandatory pass
// through body before the loop/exit decision.
func (c *compiler) compilePlus(n *ast.Node) error {
	bodyTarget := len(c.instrs)
	if err := c.compile(n.Child()); err != nil {
		return err
	}
	splitIdx := c.emit(Instr{Op: OpSplit})
	endTarget := len(c.instrs)
	setGreedyTargets(&c.instrs[splitIdx], n.Greedy, bodyTarget, endTarget)
	return nil
}

// compileOption: Split(body,end); body; end.
func (c *compiler) compileOption(n *ast.Node) error {
	splitIdx := c.emit(Instr{Op: OpSplit})
	bodyTarget := len(c.instrs)
	if err := c.compile(n.Child()); err != nil {
		return err
	}
	endTarget := len(c.instrs)
	setGreedyTargets(&c.instrs[splitIdx], n.Greedy, bodyTarget, endTarget)
	return nil
}

func setGreedyTargets(instr *Instr, g ast.Greediness, body, end int) {
	if g == ast.Greedy {
		instr.A, instr.B = body, end
	} else {
		instr.A, instr.B = end, body
	}
}

// compileRepeat unrolls n mandatory copies of the child, followed by
// either a Star tail (unbounded max) or m-n independently optional
// copies compiled in sequence (finite max).
func (c *compiler) compileRepeat(n *ast.Node) error {
	child := n.Child()
	minN := int(n.Min.Num)

	for i := 0; i < minN; i++ {
		if err := c.compile(child); err != nil {
			return err
		}
	}

	if n.Max.Infinite {
		return c.compileStar(&ast.Node{Kind: ast.Star, Greedy: n.Greedy, Children: []*ast.Node{child}})
	}

	maxN := int(n.Max.Num)
	for i := 0; i < maxN-minN; i++ {
		if err := c.compileOption(&ast.Node{Kind: ast.Option, Greedy: n.Greedy, Children: []*ast.Node{child}}); err != nil {
			return err
		}
	}
	return nil
}
