package attestation

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const agreementCID CID = "QmAgreementCIDXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"

func samplePoA() ProofOfAuthorityMsg {
	return ProofOfAuthorityMsg{
		Name:         NameProofOfAuthority,
		From:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		AgreementCID: agreementCID,
		Signers: []Signer{
			{Addr: common.HexToAddress("0x1111111111111111111111111111111111111111"), Metadata: "some metadata"},
		},
		App:       AppName,
		Timestamp: 1_700_000_000,
		Metadata:  "proof metadata",
	}
}

func TestHasher_DigestDeterministic(t *testing.T) {
	h := NewHasher()
	m := samplePoA()
	d1 := h.Digest(m)
	d2 := h.Digest(m)
	if d1 != d2 {
		t.Fatal("Digest is not deterministic")
	}
}

func TestHasher_DigestChangesWithField(t *testing.T) {
	h := NewHasher()
	m1 := samplePoA()
	m2 := samplePoA()
	m2.Metadata = "different metadata"

	if h.Digest(m1) == h.Digest(m2) {
		t.Fatal("changing a field did not change the digest")
	}
}

func TestHasher_DigestDiffersByPrimaryType(t *testing.T) {
	h := NewHasher()
	poa := samplePoA()
	pos := ProofOfSignatureMsg{
		Name:         NameProofOfSignature,
		Signer:       poa.From,
		AgreementCID: poa.AgreementCID,
		App:          AppName,
		Timestamp:    poa.Timestamp,
		Metadata:     poa.Metadata,
	}

	if h.Digest(poa) == h.Digest(pos) {
		t.Fatal("distinct primary types produced the same digest")
	}
}

func TestHasher_SignerOrderMatters(t *testing.T) {
	h := NewHasher()
	a := common.HexToAddress("0x1111111111111111111111111111111111111111")
	b := common.HexToAddress("0x2222222222222222222222222222222222222222")

	m1 := samplePoA()
	m1.Signers = []Signer{{Addr: a, Metadata: "x"}, {Addr: b, Metadata: "y"}}
	m2 := samplePoA()
	m2.Signers = []Signer{{Addr: b, Metadata: "y"}, {Addr: a, Metadata: "x"}}

	if h.Digest(m1) == h.Digest(m2) {
		t.Fatal("reordering signers did not change the digest")
	}
}

func TestHasher_StructHashUnknownVariantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected StructHash to panic on an unknown TypedMessage variant")
		}
	}()
	h := NewHasher()
	h.StructHash(fakeTypedMessage{})
}

type fakeTypedMessage struct{}

func (fakeTypedMessage) primaryType() string { return "Fake" }

func TestDomainSeparator_Stable(t *testing.T) {
	h1 := NewHasher()
	h2 := NewHasher()
	if h1.DomainSeparator() != h2.DomainSeparator() {
		t.Fatal("domain separator is not stable across Hasher instances")
	}
}

func TestEncodeCIDArray_OrderMatters(t *testing.T) {
	a := encodeCIDArray([]CID{"one", "two"})
	b := encodeCIDArray([]CID{"two", "one"})
	if a == b {
		t.Fatal("reordering CIDs did not change the encoded array hash")
	}
}
