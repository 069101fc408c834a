package codegen

// Chunk represents a sequence of instructions
type Chunk struct {
	// Code is the encoded instructions
	Code []byte

	// Constants pool - internal names, field names and descriptors
	Constants []string

	// Lines maps byte offset to source line number
	Lines []int

	// File is the source file name
	File string

	index map[string]int
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]string, 0, 16),
		Lines:     make([]int, 0, 64),
		index:     make(map[string]int),
	}
}

// Write adds a byte to the chunk with line info
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// WriteOperand writes a 2-byte operand
func (c *Chunk) WriteOperand(v int, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// AddConstant adds a string to the pool and returns its index. Equal
// strings share one entry.
func (c *Chunk) AddConstant(value string) int {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if idx, ok := c.index[value]; ok {
		return idx
	}
	c.Constants = append(c.Constants, value)
	idx := len(c.Constants) - 1
	c.index[value] = idx
	return idx
}

// ReadOperand reads a 2-byte operand at offset
func (c *Chunk) ReadOperand(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}
