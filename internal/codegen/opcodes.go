// Package codegen lowers resolved implicit candidates to an abstract
// instruction stream.
package codegen

// Opcode represents a single instruction
type Opcode byte

const (
	OP_LOAD_LOCAL  Opcode = iota // Push local variable: slot(2) type(2)
	OP_GET_STATIC                // Push static field: owner(2) field(2) type(2)
	OP_CHECKCAST                 // Checked downcast of top of stack: type(2)
	OP_NEW                       // Allocate uninitialized object: type(2)
	OP_DUP                       // Duplicate top of stack
	OP_INVOKE_CTOR               // Invoke constructor: owner(2) descriptor(2)
)

// OpcodeNames maps opcodes to their string names for debugging
var OpcodeNames = map[Opcode]string{
	OP_LOAD_LOCAL:  "LOAD_LOCAL",
	OP_GET_STATIC:  "GET_STATIC",
	OP_CHECKCAST:   "CHECKCAST",
	OP_NEW:         "NEW",
	OP_DUP:         "DUP",
	OP_INVOKE_CTOR: "INVOKE_CTOR",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// operandCount returns the number of 2-byte operands following op.
func operandCount(op Opcode) int {
	switch op {
	case OP_LOAD_LOCAL, OP_INVOKE_CTOR:
		return 2
	case OP_GET_STATIC:
		return 3
	case OP_CHECKCAST, OP_NEW:
		return 1
	default:
		return 0
	}
}
