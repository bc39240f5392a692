package bytecode

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// BundleVersion is the current .tkc bundle format version.
const BundleVersion uint16 = 1

// cborEncMode uses canonical mode so equal bundles encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Bundle is the on-disk form of a compiled program: the serialized chunk plus
// build metadata for provenance and staleness checks.
type Bundle struct {
	FormatVersion uint16    `cbor:"version"`
	BuildID       string    `cbor:"build_id"`
	SourceHash    [32]byte  `cbor:"source_hash"`
	CreatedAt     time.Time `cbor:"created_at"`
	Chunk         []byte    `cbor:"chunk"`
}

// NewBundle wraps a compiled chunk with metadata derived from its source.
func NewBundle(c *Chunk, source []byte) (*Bundle, error) {
	data, err := c.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize chunk: %w", err)
	}
	return &Bundle{
		FormatVersion: BundleVersion,
		BuildID:       uuid.NewString(),
		SourceHash:    sha256.Sum256(source),
		CreatedAt:     time.Now().UTC(),
		Chunk:         data,
	}, nil
}

// MarshalBundle serializes a bundle to CBOR bytes.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalBundle deserializes a bundle from CBOR bytes.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	if b.FormatVersion > BundleVersion {
		return nil, fmt.Errorf("bundle version %d is newer than supported version %d", b.FormatVersion, BundleVersion)
	}
	return &b, nil
}

// OpenChunk deserializes the bundle's chunk.
func (b *Bundle) OpenChunk() (*Chunk, error) {
	return Deserialize(b.Chunk)
}

// Verify reports whether the bundle was built from the given source text.
func (b *Bundle) Verify(source []byte) error {
	if sha256.Sum256(source) != b.SourceHash {
		return fmt.Errorf("source hash mismatch for build %s", b.BuildID)
	}
	return nil
}
