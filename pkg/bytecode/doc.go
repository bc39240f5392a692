// Package bytecode provides the Tusk bytecode compiler and instruction
// format: a flat, byte-oriented instruction stream executed by a stack
// machine (package vm).
//
// The format is designed for:
//   - Compact representation (1-3 bytes per instruction)
//   - Fast decoding (fixed-width operands declared per opcode)
//   - Easy serialization (chunks can be cached in SQLite or written to
//     .tkc bundles)
//
// The package consists of:
//
//   - Opcodes: the instruction set and its static definition table
//     (mnemonic, operand widths, stack effect per opcode)
//
//   - Instructions: the encoder/decoder pair (Make/Decode) and the
//     disassembler derived from it
//
//   - Compiler: converts the parser's AST into a Chunk, compiling operands
//     before operators and back-patching jump targets once branch sizes are
//     known. Jump operands are absolute byte offsets into the stream.
//
//   - Chunk: the compiler's output (instruction stream plus constant pool),
//     with a versioned binary serialization ("TKBC") and a CBOR bundle form
//     carrying build metadata
//
// The compiler covers the single-unit expression language: literals, prefix
// and infix operators, conditionals, global let bindings, arrays and
// indexing. Function literals have no bytecode rule (there are no
// multi-function compilation units); compilation reports ErrUnsupported and
// callers fall back to the tree-walking evaluator.
package bytecode
