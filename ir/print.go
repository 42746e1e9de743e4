package ir

import (
	"fmt"
	"strings"
)

// The printer produces a stable LLVM-flavoured dump, used by diagnostics,
// the instruction analyzer listings and tests.

func operandString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	if c, ok := v.(*Const); ok {
		return c.Typ.String() + " " + c.valueString()
	}
	return v.Type().String() + " " + v.valueString()
}

// String renders one instruction on one line, without a trailing newline.
func (i *Instruction) String() string {
	var sb strings.Builder
	if !i.typ.IsVoid() {
		sb.WriteString(i.valueString())
		sb.WriteString(" = ")
	}
	sb.WriteString(i.op.String())
	switch i.op {
	case OpICmp, OpFCmp:
		fmt.Fprintf(&sb, " %s %s, %s", i.pred, operandString(i.args[0]), ValueString(i.args[1]))
	case OpPhi:
		sb.WriteString(" " + i.typ.String())
		for k := range i.args {
			if k > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " [ %s, %%%s ]", ValueString(i.args[k]), i.blocks[k].name)
		}
	case OpBr:
		if i.IsConditional() {
			fmt.Fprintf(&sb, " %s, label %%%s, label %%%s", operandString(i.args[0]), i.blocks[0].name, i.blocks[1].name)
			if len(i.weights) == 2 {
				fmt.Fprintf(&sb, " !prof [%d, %d]", i.weights[0], i.weights[1])
			}
		} else {
			fmt.Fprintf(&sb, " label %%%s", i.blocks[0].name)
		}
	case OpSwitch:
		fmt.Fprintf(&sb, " %s, label %%%s [", operandString(i.args[0]), i.blocks[0].name)
		for k, c := range i.caseVals {
			fmt.Fprintf(&sb, " %s, label %%%s", operandString(Value(c)), i.blocks[k+1].name)
		}
		sb.WriteString(" ]")
	case OpCall:
		fmt.Fprintf(&sb, " %s %s(", i.typ, ValueString(i.callee))
		for k, a := range i.args {
			if k > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(operandString(a))
		}
		sb.WriteString(")")
	case OpGEP:
		fmt.Fprintf(&sb, " %s, %s", i.elemType, operandString(i.args[0]))
		for _, ix := range i.args[1:] {
			sb.WriteString(", " + operandString(ix))
		}
	case OpAlloca:
		sb.WriteString(" " + i.elemType.String())
		if len(i.args) == 1 {
			sb.WriteString(", " + operandString(i.args[0]))
		}
	case OpShuffleVector:
		fmt.Fprintf(&sb, " %s, %s, %v", operandString(i.args[0]), operandString(i.args[1]), i.mask)
	case OpExtractValue, OpInsertValue:
		for k, a := range i.args {
			if k > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" " + operandString(a))
		}
		fmt.Fprintf(&sb, ", %d", i.index)
	default:
		if i.op.IsCast() {
			fmt.Fprintf(&sb, " %s to %s", operandString(i.args[0]), i.typ)
			break
		}
		for k, a := range i.args {
			if k > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" " + operandString(a))
		}
	}
	return sb.String()
}

// String renders the whole function body.
func (f *Function) String() string {
	var sb strings.Builder
	params := make([]string, 0, len(f.params))
	for _, p := range f.params {
		params = append(params, p.typ.String()+" %"+p.name)
	}
	if f.IsDecl() {
		fmt.Fprintf(&sb, "declare %s @%s(%s)\n", f.ret, f.name, strings.Join(params, ", "))
		return sb.String()
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.ret, f.name, strings.Join(params, ", "))
	for _, b := range f.blocks {
		fmt.Fprintf(&sb, "%s:\n", b.name)
		for _, i := range b.instrs {
			sb.WriteString("  " + i.String() + "\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// String renders every global and function in the module.
func (m *Module) String() string {
	var sb strings.Builder
	for _, g := range m.globals {
		fmt.Fprintf(&sb, "@%s = global [%d x %s]\n", g.name, g.count, g.elem)
	}
	for _, f := range m.funcs {
		sb.WriteString("\n" + f.String())
	}
	return sb.String()
}
