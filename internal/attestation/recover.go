package attestation

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// secp256k1HalfN is secp256k1_n/2, the low-s malleability threshold: a
// signature with s above this value is rejected rather than normalized.
var secp256k1HalfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)

// ErrMalformedSignature covers length, v, and high-s shape problems
// detected before recovery is even attempted.
var ErrMalformedSignature = errors.New("malformed signature")

// Recover extracts the signer address from a digest and a 65-byte
// (r‖s‖v) signature, accepting either v encoding (27/28 or 0/1).
// It rejects high-s signatures (malleability), out-of-range v, and a
// recovered zero address.
func Recover(digest [32]byte, sig Bytes65Sig) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("%w: want 65 bytes, got %d", ErrMalformedSignature, len(sig))
	}

	r := sig[:32]
	s := sig[32:64]
	v := sig[64]

	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return common.Address{}, fmt.Errorf("%w: invalid v %d", ErrMalformedSignature, sig[64])
	}

	sInt := new(big.Int).SetBytes(s)
	if sInt.Cmp(secp256k1HalfN) > 0 {
		return common.Address{}, fmt.Errorf("%w: s above secp256k1_n/2", ErrMalformedSignature)
	}

	normalized := make([]byte, 65)
	copy(normalized[:32], r)
	copy(normalized[32:64], s)
	normalized[64] = v - 27

	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	addr := crypto.PubkeyToAddress(*pub)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: recovered zero address", ErrInvalidSignature)
	}
	return addr, nil
}
