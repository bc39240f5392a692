package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/tusk-lang/tusk/pkg/object"
)

// FormatVersion is the current binary chunk format version. Increment when
// making incompatible changes.
const FormatVersion uint16 = 1

// Magic bytes for serialized chunks: "TKBC" (TusK ByteCode).
var Magic = []byte{'T', 'K', 'B', 'C'}

// Constant record tags used by Serialize.
const (
	constTagInteger byte = 1
	constTagString  byte = 2
)

// Chunk is the compiler's output: the flat instruction stream plus the
// ordered constant pool its OpConstant operands index into.
type Chunk struct {
	Code      Instructions
	Constants []object.Object
}

// Disassemble returns a human-readable listing of the chunk: the constant
// pool followed by the decoded instruction stream.
func (c *Chunk) Disassemble() string {
	out := ""
	if len(c.Constants) > 0 {
		out += "; Constants:\n"
		for i, constant := range c.Constants {
			out += fmt.Sprintf(";   [%3d] %s\n", i, constant.Inspect())
		}
		out += "\n"
	}
	return out + c.Code.String()
}

// Serialize encodes the chunk to bytes for storage or transport.
// Format:
//
//	[magic:4] [version:2]
//	[code_len:4] [code:...]
//	[const_count:2] [tag:1 payload:... per constant]
//
// Integer constants carry an 8-byte big-endian two's-complement payload,
// string constants a u32 length prefix. Booleans and null never reach the
// pool; they have dedicated opcodes.
func (c *Chunk) Serialize() ([]byte, error) {
	buf := make([]byte, 0, 8+len(c.Code)+len(c.Constants)*16)

	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint16(buf, FormatVersion)

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Code)))
	buf = append(buf, c.Code...)

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Constants)))
	for i, constant := range c.Constants {
		switch v := constant.(type) {
		case *object.Integer:
			buf = append(buf, constTagInteger)
			buf = binary.BigEndian.AppendUint64(buf, uint64(v.Value))
		case *object.String:
			buf = append(buf, constTagString)
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.Value)))
			buf = append(buf, v.Value...)
		default:
			return nil, fmt.Errorf("cannot serialize constant %d of type %s", i, constant.Type())
		}
	}

	return buf, nil
}

// Deserialize decodes a chunk produced by Serialize.
func Deserialize(data []byte) (*Chunk, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("chunk too short: need at least 6 bytes, got %d", len(data))
	}
	if string(data[0:4]) != string(Magic) {
		return nil, fmt.Errorf("invalid chunk magic: expected %q, got %q", Magic, data[0:4])
	}

	version := binary.BigEndian.Uint16(data[4:6])
	if version > FormatVersion {
		return nil, fmt.Errorf("chunk version %d is newer than supported version %d", version, FormatVersion)
	}
	pos := 6

	if pos+4 > len(data) {
		return nil, fmt.Errorf("unexpected end of chunk reading code length")
	}
	codeLen := binary.BigEndian.Uint32(data[pos:])
	pos += 4

	if pos+int(codeLen) > len(data) {
		return nil, fmt.Errorf("unexpected end of chunk reading code section: need %d bytes at pos %d", codeLen, pos)
	}
	c := &Chunk{Code: make(Instructions, codeLen)}
	copy(c.Code, data[pos:pos+int(codeLen)])
	pos += int(codeLen)

	if pos+2 > len(data) {
		return nil, fmt.Errorf("unexpected end of chunk reading constant count")
	}
	constCount := binary.BigEndian.Uint16(data[pos:])
	pos += 2

	c.Constants = make([]object.Object, constCount)
	for i := range c.Constants {
		if pos >= len(data) {
			return nil, fmt.Errorf("unexpected end of chunk reading constant %d tag", i)
		}
		tag := data[pos]
		pos++

		switch tag {
		case constTagInteger:
			if pos+8 > len(data) {
				return nil, fmt.Errorf("unexpected end of chunk reading constant %d", i)
			}
			c.Constants[i] = &object.Integer{Value: int64(binary.BigEndian.Uint64(data[pos:]))}
			pos += 8
		case constTagString:
			if pos+4 > len(data) {
				return nil, fmt.Errorf("unexpected end of chunk reading constant %d length", i)
			}
			strLen := binary.BigEndian.Uint32(data[pos:])
			pos += 4
			if pos+int(strLen) > len(data) {
				return nil, fmt.Errorf("unexpected end of chunk reading constant %d", i)
			}
			c.Constants[i] = &object.String{Value: string(data[pos : pos+int(strLen)])}
			pos += int(strLen)
		default:
			return nil, fmt.Errorf("unknown constant tag %d for constant %d", tag, i)
		}
	}

	return c, nil
}
