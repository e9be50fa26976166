package attestation

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// Fixed EIP-712 type hashes, computed once at package init. The type
// strings are the DAOSignApp.sol set, taken as authoritative over the
// older Proofs.sol set found elsewhere in the contracts.
var (
	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))
	signerTypeHash = crypto.Keccak256Hash([]byte(
		"Signer(address addr,string metadata)",
	))
	proofAuthorityTypeHash = crypto.Keccak256Hash([]byte(
		"ProofOfAuthority(string name,address from,string agreementCID,Signer[] signers,string app,uint256 timestamp,string metadata)Signer(address addr,string metadata)",
	))
	proofSignatureTypeHash = crypto.Keccak256Hash([]byte(
		"ProofOfSignature(string name,address signer,string agreementCID,string app,uint256 timestamp,string metadata)",
	))
	proofAgreementTypeHash = crypto.Keccak256Hash([]byte(
		"ProofOfAgreement(string agreementCID,string[] signatureCIDs,string app,uint256 timestamp,string metadata)",
	))
)

// Hasher computes EIP-712 struct hashes and the final signing digest for
// the three daosign message variants. It holds no mutable state; the
// domain separator is derived from the fixed DefaultDomain once.
type Hasher struct {
	domainSeparator [32]byte
}

// NewHasher builds a Hasher with the domain separator cached.
func NewHasher() *Hasher {
	return &Hasher{domainSeparator: computeDomainSeparator(DefaultDomain)}
}

// DomainSeparator returns the cached 32-byte domain separator.
func (h *Hasher) DomainSeparator() [32]byte {
	return h.domainSeparator
}

func computeDomainSeparator(d Domain) [32]byte {
	// abi.encode(typeHash, nameHash, versionHash, chainId, verifyingContract)
	encoded := make([]byte, 5*32)
	copy(encoded[0:32], domainTypeHash[:])
	copy(encoded[32:64], encodeString(d.Name)[:])
	copy(encoded[64:96], encodeString(d.Version)[:])
	copy(encoded[96:128], encodeUint64(d.ChainID)[:])
	copy(encoded[128:160], encodeAddress(d.VerifyingContract)[:])
	return crypto.Keccak256Hash(encoded)
}

// StructHash dispatches on the concrete message type and returns its
// EIP-712 struct hash (keccak256(typeHash ‖ abi.encode(fields...))).
func (h *Hasher) StructHash(m TypedMessage) [32]byte {
	switch msg := m.(type) {
	case ProofOfAuthorityMsg:
		return hashProofOfAuthority(msg)
	case ProofOfSignatureMsg:
		return hashProofOfSignature(msg)
	case ProofOfAgreementMsg:
		return hashProofOfAgreement(msg)
	default:
		panic("attestation: unknown TypedMessage variant")
	}
}

// Digest computes the final EIP-712 signing digest:
// keccak256(0x19 ‖ 0x01 ‖ domainSeparator ‖ structHash(m)).
func (h *Hasher) Digest(m TypedMessage) [32]byte {
	structHash := h.StructHash(m)
	buf := make([]byte, 2+32+32)
	buf[0] = 0x19
	buf[1] = 0x01
	copy(buf[2:34], h.domainSeparator[:])
	copy(buf[34:66], structHash[:])
	return crypto.Keccak256Hash(buf)
}

func hashSigner(s Signer) [32]byte {
	encoded := make([]byte, 3*32)
	copy(encoded[0:32], signerTypeHash[:])
	copy(encoded[32:64], encodeAddress(s.Addr)[:])
	copy(encoded[64:96], encodeString(s.Metadata)[:])
	return crypto.Keccak256Hash(encoded)
}

func hashProofOfAuthority(m ProofOfAuthorityMsg) [32]byte {
	encoded := make([]byte, 8*32)
	copy(encoded[0:32], proofAuthorityTypeHash[:])
	copy(encoded[32:64], encodeString(m.Name)[:])
	copy(encoded[64:96], encodeAddress(m.From)[:])
	copy(encoded[96:128], encodeString(string(m.AgreementCID))[:])
	signersHash := encodeSignerArray(m.Signers)
	copy(encoded[128:160], signersHash[:])
	copy(encoded[160:192], encodeString(m.App)[:])
	copy(encoded[192:224], encodeUint64(uint64(m.Timestamp))[:])
	copy(encoded[224:256], encodeString(m.Metadata)[:])
	return crypto.Keccak256Hash(encoded)
}

func hashProofOfSignature(m ProofOfSignatureMsg) [32]byte {
	encoded := make([]byte, 7*32)
	copy(encoded[0:32], proofSignatureTypeHash[:])
	copy(encoded[32:64], encodeString(m.Name)[:])
	copy(encoded[64:96], encodeAddress(m.Signer)[:])
	copy(encoded[96:128], encodeString(string(m.AgreementCID))[:])
	copy(encoded[128:160], encodeString(m.App)[:])
	copy(encoded[160:192], encodeUint64(uint64(m.Timestamp))[:])
	copy(encoded[192:224], encodeString(m.Metadata)[:])
	return crypto.Keccak256Hash(encoded)
}

func hashProofOfAgreement(m ProofOfAgreementMsg) [32]byte {
	encoded := make([]byte, 6*32)
	copy(encoded[0:32], proofAgreementTypeHash[:])
	copy(encoded[32:64], encodeString(string(m.AgreementCID))[:])
	signatureCIDsHash := encodeCIDArray(m.SignatureCIDs)
	copy(encoded[64:96], signatureCIDsHash[:])
	copy(encoded[96:128], encodeString(m.App)[:])
	copy(encoded[128:160], encodeUint64(uint64(m.Timestamp))[:])
	copy(encoded[160:192], encodeString(m.Metadata)[:])
	return crypto.Keccak256Hash(encoded)
}

// ── field encoders ──────────────────────────────────────────────────────
// Each returns a single 32-byte ABI slot, matching solidity's encoding
// rules for the corresponding field type.

func encodeString(s string) []byte {
	return crypto.Keccak256([]byte(s))
}

func encodeAddress(a Address) []byte {
	var out [32]byte
	copy(out[12:], a[:])
	return out[:]
}

func encodeUint64(v uint64) []byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], v)
	return out[:]
}

// encodeSignerArray hashes a dynamic array of Signer structs: the
// concatenation of each element's struct hash, no length prefix and no
// separator between elements (encodePacked(concat(hash(elem_i)))).
func encodeSignerArray(signers []Signer) [32]byte {
	buf := make([]byte, 0, len(signers)*32)
	for _, s := range signers {
		h := hashSigner(s)
		buf = append(buf, h[:]...)
	}
	return crypto.Keccak256Hash(buf)
}

// encodeCIDArray hashes a dynamic array of strings: the concatenation of
// the keccak256 of each string.
func encodeCIDArray(cids []CID) [32]byte {
	buf := make([]byte, 0, len(cids)*32)
	for _, c := range cids {
		h := encodeString(string(c))
		buf = append(buf, h[:]...)
	}
	return crypto.Keccak256Hash(buf)
}
