package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDiamond returns a function shaped entry -> (left|right) -> merge with
// a phi join in merge.
func buildDiamond(t *testing.T) (*Function, *Block, *Block, *Block, *Block) {
	t.Helper()
	m := NewModule("test")
	f := m.NewFunction("diamond", I32, NewParam("c", I1))
	entry := f.NewBlock("entry")
	left := f.NewBlock("left")
	right := f.NewBlock("right")
	merge := f.NewBlock("merge")

	AtEnd(entry).CondBr(f.Params()[0], left, right)
	lv := AtEnd(left).Binary(OpAdd, ConstInt(I32, 1), ConstInt(I32, 2), "lv")
	AtEnd(left).Br(merge)
	rv := AtEnd(right).Binary(OpAdd, ConstInt(I32, 3), ConstInt(I32, 4), "rv")
	AtEnd(right).Br(merge)

	b := AtEnd(merge)
	phi := b.Phi(I32, "join")
	phi.AddIncoming(lv, left)
	phi.AddIncoming(rv, right)
	b.Ret(phi)
	return f, entry, left, right, merge
}

func TestBuildDomTreeDiamond(t *testing.T) {
	f, entry, left, right, merge := buildDiamond(t)
	dt := BuildDomTree(f)

	require.Nil(t, dt.Idom(entry))
	require.Equal(t, entry, dt.Idom(left))
	require.Equal(t, entry, dt.Idom(right))
	require.Equal(t, entry, dt.Idom(merge))

	require.True(t, dt.Dominates(entry, merge))
	require.False(t, dt.Dominates(left, merge))

	pre := dt.Preorder()
	require.Len(t, pre, 4)
	require.Equal(t, entry, pre[0])
}

func TestPreorderSkipsUnreachable(t *testing.T) {
	m := NewModule("test")
	f := m.NewFunction("f", Void)
	entry := f.NewBlock("entry")
	AtEnd(entry).Ret(nil)
	dead := f.NewBlock("dead")
	AtEnd(dead).Ret(nil)

	dt := BuildDomTree(f)
	require.Equal(t, []*Block{entry}, dt.Preorder())
}

func TestSplitBlockBeforeRetargetsPhis(t *testing.T) {
	f, _, left, _, merge := buildDiamond(t)

	term := left.Terminator()
	tail := f.SplitBlockBefore(term, "left.cont")

	require.Equal(t, tail, term.Parent())
	require.Len(t, left.Instructions(), 1) // the add stays
	require.Nil(t, left.Terminator())

	// The merge phi's incoming block for the moved branch is now the tail.
	phi := merge.First()
	require.Equal(t, OpPhi, phi.Op())
	require.NotNil(t, phi.IncomingForBlock(tail))
	require.Nil(t, phi.IncomingForBlock(left))
}

func TestNumUses(t *testing.T) {
	f, _, left, _, merge := buildDiamond(t)
	lv := left.First()
	require.Equal(t, 1, f.NumUses(lv)) // phi incoming

	phi := merge.First()
	require.Equal(t, 1, f.NumUses(phi)) // ret
	phi.RemoveIncoming(0)
	require.Equal(t, 0, f.NumUses(lv))
}
