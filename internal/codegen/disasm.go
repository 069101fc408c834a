package codegen

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the chunk
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])
	n := operandCount(op)
	if offset+1+2*n > len(chunk.Code) {
		sb.WriteString(fmt.Sprintf("%s (truncated)\n", op))
		return len(chunk.Code)
	}

	switch op {
	case OP_DUP:
		return simpleInstruction(sb, op.String(), offset)
	case OP_LOAD_LOCAL:
		slot := chunk.ReadOperand(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d %s\n", op, slot, constant(chunk, chunk.ReadOperand(offset+3))))
		return offset + 5
	case OP_GET_STATIC, OP_CHECKCAST, OP_NEW, OP_INVOKE_CTOR:
		return constantInstruction(sb, op.String(), chunk, offset, n)
	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(fmt.Sprintf("%s\n", name))
	return offset + 1
}

// constantInstruction prints an instruction whose n operands are all
// constant pool indices.
func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset, n int) int {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = constant(chunk, chunk.ReadOperand(offset+1+2*i))
	}
	sb.WriteString(fmt.Sprintf("%-16s %s\n", name, strings.Join(parts, " ")))
	return offset + 1 + 2*n
}

func constant(chunk *Chunk, idx int) string {
	if idx < len(chunk.Constants) {
		return fmt.Sprintf("'%s'", chunk.Constants[idx])
	}
	return fmt.Sprintf("%d (invalid)", idx)
}
