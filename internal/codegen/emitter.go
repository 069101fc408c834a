package codegen

// Emitter receives the instructions produced by lowering.
type Emitter interface {
	LoadLocal(slot int, t RuntimeType)
	GetStatic(owner, field string, t RuntimeType)
	CheckCast(t RuntimeType)
	New(t RuntimeType)
	Dup()
	InvokeConstructor(owner, descriptor string)
}

// ChunkEmitter encodes instructions into a Chunk.
type ChunkEmitter struct {
	Chunk *Chunk
	Line  int // Source line attributed to emitted bytes
}

func NewChunkEmitter(line int) *ChunkEmitter {
	return &ChunkEmitter{Chunk: NewChunk(), Line: line}
}

func (e *ChunkEmitter) LoadLocal(slot int, t RuntimeType) {
	e.Chunk.WriteOp(OP_LOAD_LOCAL, e.Line)
	e.Chunk.WriteOperand(slot, e.Line)
	e.operand(t.Descriptor())
}

func (e *ChunkEmitter) GetStatic(owner, field string, t RuntimeType) {
	e.Chunk.WriteOp(OP_GET_STATIC, e.Line)
	e.operand(owner)
	e.operand(field)
	e.operand(t.Descriptor())
}

func (e *ChunkEmitter) CheckCast(t RuntimeType) {
	e.Chunk.WriteOp(OP_CHECKCAST, e.Line)
	e.operand(t.InternalName)
}

func (e *ChunkEmitter) New(t RuntimeType) {
	e.Chunk.WriteOp(OP_NEW, e.Line)
	e.operand(t.InternalName)
}

func (e *ChunkEmitter) Dup() {
	e.Chunk.WriteOp(OP_DUP, e.Line)
}

func (e *ChunkEmitter) InvokeConstructor(owner, descriptor string) {
	e.Chunk.WriteOp(OP_INVOKE_CTOR, e.Line)
	e.operand(owner)
	e.operand(descriptor)
}

func (e *ChunkEmitter) operand(constant string) {
	e.Chunk.WriteOperand(e.Chunk.AddConstant(constant), e.Line)
}
