// Package attestation implements the daosign typed-data attestation
// registry: EIP-712-compatible hashing, secp256k1 signature recovery,
// cross-referential validation, and the persisted Proof-of-Authority /
// Proof-of-Signature / Proof-of-Agreement state machine.
package attestation

import (
	"github.com/ethereum/go-ethereum/common"
)

// ValidCIDLen is the fixed length of an IPFS v0 base58 CID, which this
// system treats as an opaque content identifier.
const ValidCIDLen = 46

// CID is an opaque content identifier. It is never dereferenced or
// validated against any content-addressed store by this package.
type CID string

// Valid reports whether c has the fixed length an IPFS v0 CID must have.
func (c CID) Valid() bool {
	return len(c) == ValidCIDLen
}

// Address is a 20-byte Ethereum-style account address.
type Address = common.Address

// Bytes65Sig is a raw (r‖s‖v) secp256k1 signature.
type Bytes65Sig []byte

// Timestamp is seconds since the Unix epoch. Not validated against wall
// clock time by this package.
type Timestamp uint64

// Domain is the fixed, process-wide EIP-712 domain. Its fields never
// change after process start; Hasher.DomainSeparator returns its
// keccak256 hash.
type Domain struct {
	Name              string  `json:"name"`
	Version           string  `json:"version"`
	ChainID           uint64  `json:"chainId"`
	VerifyingContract Address `json:"verifyingContract"`
}

// DefaultDomain is the singleton domain this registry signs and verifies
// against. It is not configurable at runtime.
var DefaultDomain = Domain{
	Name:              "daosign",
	Version:           "0.1.0",
	ChainID:           0,
	VerifyingContract: Address{},
}

// Signer names one party entitled to sign an agreement.
type Signer struct {
	Addr     Address `json:"addr"`
	Metadata string  `json:"metadata"`
}

// ProofOfAuthorityMsg declares who may sign a given agreement.
type ProofOfAuthorityMsg struct {
	Name         string    `json:"name"`
	From         Address   `json:"from"`
	AgreementCID CID       `json:"agreementCID"`
	Signers      []Signer  `json:"signers"`
	App          string    `json:"app"`
	Timestamp    Timestamp `json:"timestamp"`
	Metadata     string    `json:"metadata"`
}

// ProofOfSignatureMsg records one signer's acknowledgment of a stored
// Proof-of-Authority.
type ProofOfSignatureMsg struct {
	Name         string    `json:"name"`
	Signer       Address   `json:"signer"`
	AgreementCID CID       `json:"agreementCID"`
	App          string    `json:"app"`
	Timestamp    Timestamp `json:"timestamp"`
	Metadata     string    `json:"metadata"`
}

// ProofOfAgreementMsg bundles every Proof-of-Signature for an authority
// into the completed agreement record.
type ProofOfAgreementMsg struct {
	AgreementCID  CID       `json:"agreementCID"`
	SignatureCIDs []CID     `json:"signatureCIDs"`
	App           string    `json:"app"`
	Timestamp     Timestamp `json:"timestamp"`
	Metadata      string    `json:"metadata"`
}

// TypedMessage is implemented by every message variant hashable by the
// Hasher. primaryType returns the EIP-712 primary type name used in read
// responses; struct-hash dispatch switches on the concrete type instead.
type TypedMessage interface {
	primaryType() string
}

func (ProofOfAuthorityMsg) primaryType() string  { return "ProofOfAuthority" }
func (ProofOfSignatureMsg) primaryType() string  { return "ProofOfSignature" }
func (ProofOfAgreementMsg) primaryType() string  { return "ProofOfAgreement" }

// PrimaryType returns the EIP-712 primary type name for m.
func PrimaryType(m TypedMessage) string { return m.primaryType() }

// SignedProof bundles a typed message with its signature and the
// content-addressed identifier it is stored under.
type SignedProof[T TypedMessage] struct {
	Message   T          `json:"message"`
	Signature Bytes65Sig `json:"signature"`
	ProofCID  CID        `json:"proofCID"`
}

type (
	SignedProofOfAuthority = SignedProof[ProofOfAuthorityMsg]
	SignedProofOfSignature = SignedProof[ProofOfSignatureMsg]
	SignedProofOfAgreement = SignedProof[ProofOfAgreementMsg]
)

// Canonical literal values the validator checks records against.
const (
	AppName              = "daosign"
	NameProofOfAuthority = "Proof-of-Authority"
	NameProofOfSignature = "Proof-of-Signature"
)
