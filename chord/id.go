package chord

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/big"

	"go.ringkeeper.dev/ring/util"
)

var hexScratch = util.NewBufferPool(IDBytes * 2)

// IDBits is the width of the identifier ring, M in the original paper.
const IDBits = 160

// IDBytes is IDBits/8, the fixed width of an Id.
const IDBytes = IDBits / 8

// Id is a 160-bit ring position, the big-endian interpretation of a SHA-1 digest.
type Id [IDBytes]byte

var ringModulus = new(big.Int).Lsh(big.NewInt(1), IDBits)

// ComputeID hashes a node's network endpoint into its ring position.
func ComputeID(host string, port int) Id {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d", host, port)))
	var id Id
	copy(id[:], sum[:])
	return id
}

// Cmp returns -1, 0, or 1 as the receiver is less than, equal to, or greater than other.
func (id Id) Cmp(other Id) int {
	for i := 0; i < IDBytes; i++ {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (id Id) Equal(other Id) bool {
	return id.Cmp(other) == 0
}

func (id Id) bigInt() *big.Int {
	return new(big.Int).SetBytes(id[:])
}

// AddPow2 returns (id + 2^k) mod 2^160, the start of finger table entry k.
func (id Id) AddPow2(k int) Id {
	offset := new(big.Int).Lsh(big.NewInt(1), uint(k))
	sum := new(big.Int).Add(id.bigInt(), offset)
	sum.Mod(sum, ringModulus)
	return idFromBigInt(sum)
}

func idFromBigInt(v *big.Int) Id {
	var id Id
	b := v.Bytes()
	copy(id[IDBytes-len(b):], b)
	return id
}

// String renders the identifier as 40 lowercase hex characters.
func (id Id) String() string {
	buf := hexScratch.Get()
	defer hexScratch.Put(buf)
	hex.Encode(buf, id[:])
	return string(buf)
}

// IdFromHex parses the 40-character hex form produced by Id.String.
func IdFromHex(s string) (Id, error) {
	var id Id
	if len(s) != IDBytes*2 {
		return id, fmt.Errorf("chord: id hex must be %d characters, got %d", IDBytes*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("chord: invalid id hex: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// InSuccessorRange reports whether id lies in the half-open arc (start, end],
// wrapping through zero when start >= end. Degenerates to "always true" when
// start == end, since that covers the whole ring.
func InSuccessorRange(id, start, end Id) bool {
	if start.Cmp(end) < 0 {
		return id.Cmp(start) > 0 && id.Cmp(end) <= 0
	}
	return id.Cmp(start) > 0 || id.Cmp(end) <= 0
}

// InFingerRange reports whether key lies in the open arc (start, end), wrapping
// through zero when start >= end. Degenerates to "always true" when start == end.
func InFingerRange(key, start, end Id) bool {
	if start.Cmp(end) < 0 {
		return key.Cmp(start) > 0 && key.Cmp(end) < 0
	}
	return key.Cmp(start) > 0 || key.Cmp(end) < 0
}
