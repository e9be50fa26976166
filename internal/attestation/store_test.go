package attestation

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb)
}

func testAuthority() SignedProofOfAuthority {
	return SignedProofOfAuthority{
		Message:   samplePoA(),
		Signature: Bytes65Sig(make([]byte, 65)),
		ProofCID:  agreementCID,
	}
}

func TestStore_AuthorityRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	proof := testAuthority()

	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority: %v", err)
	}

	got, found, err := s.Authority(ctx, proof.ProofCID)
	if err != nil {
		t.Fatalf("Authority: %v", err)
	}
	if !found {
		t.Fatal("expected found = true")
	}
	if got.Message.From != proof.Message.From {
		t.Errorf("From: got %s want %s", got.Message.From, proof.Message.From)
	}
}

func TestStore_AuthorityNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, found, err := s.Authority(ctx, agreementCID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found = false for an unwritten CID")
	}
}

func TestStore_AuthorityBuildsSignerIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := common.HexToAddress("0x1111111111111111111111111111111111111111")
	b := common.HexToAddress("0x2222222222222222222222222222222222222222")
	proof := testAuthority()
	proof.Message.Signers = []Signer{{Addr: a, Metadata: "a"}, {Addr: b, Metadata: "b"}}

	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority: %v", err)
	}

	idxA, ok, err := s.SignerIndex(ctx, proof.ProofCID, a)
	if err != nil || !ok || idxA != 0 {
		t.Fatalf("SignerIndex(a): idx=%d ok=%v err=%v", idxA, ok, err)
	}
	idxB, ok, err := s.SignerIndex(ctx, proof.ProofCID, b)
	if err != nil || !ok || idxB != 1 {
		t.Fatalf("SignerIndex(b): idx=%d ok=%v err=%v", idxB, ok, err)
	}
}

func TestStore_AuthorityDuplicateSignerLastIndexWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := common.HexToAddress("0x1111111111111111111111111111111111111111")
	proof := testAuthority()
	proof.Message.Signers = []Signer{{Addr: a, Metadata: "first"}, {Addr: a, Metadata: "second"}}

	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority: %v", err)
	}

	idx, ok, err := s.SignerIndex(ctx, proof.ProofCID, a)
	if err != nil || !ok {
		t.Fatalf("SignerIndex: ok=%v err=%v", ok, err)
	}
	if idx != 1 {
		t.Fatalf("expected last index (1) to win, got %d", idx)
	}
}

func TestStore_AuthorityOverwriteReplacesRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	proof := testAuthority()
	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority: %v", err)
	}

	proof.Message.Metadata = "replaced"
	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority (overwrite): %v", err)
	}

	got, _, err := s.Authority(ctx, proof.ProofCID)
	if err != nil {
		t.Fatalf("Authority: %v", err)
	}
	if got.Message.Metadata != "replaced" {
		t.Fatalf("expected overwritten metadata, got %q", got.Message.Metadata)
	}
}

func TestStore_AuthoritySetsProof2Signer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	proof := testAuthority()

	if err := s.StoreAuthority(ctx, proof); err != nil {
		t.Fatalf("StoreAuthority: %v", err)
	}

	signer, found, err := s.Proof2Signer(ctx, proof.ProofCID)
	if err != nil || !found {
		t.Fatalf("Proof2Signer: found=%v err=%v", found, err)
	}
	if signer != proof.Message.From {
		t.Errorf("signer: got %s want %s", signer, proof.Message.From)
	}
}

func TestStore_SignatureRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	proof := SignedProofOfSignature{
		Message: ProofOfSignatureMsg{
			Name:         NameProofOfSignature,
			Signer:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
			AgreementCID: agreementCID,
			App:          AppName,
		},
		Signature: Bytes65Sig(make([]byte, 65)),
		ProofCID:  CID("posiCIDXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"),
	}

	if err := s.StoreSignature(ctx, proof); err != nil {
		t.Fatalf("StoreSignature: %v", err)
	}

	got, found, err := s.Signature(ctx, proof.ProofCID)
	if err != nil || !found {
		t.Fatalf("Signature: found=%v err=%v", found, err)
	}
	if got.Message.Signer != proof.Message.Signer {
		t.Errorf("Signer: got %s want %s", got.Message.Signer, proof.Message.Signer)
	}

	signer, found, err := s.Proof2Signer(ctx, proof.ProofCID)
	if err != nil || !found || signer != proof.Message.Signer {
		t.Fatalf("Proof2Signer: signer=%s found=%v err=%v", signer, found, err)
	}
}

func TestStore_AgreementRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	proof := SignedProofOfAgreement{
		Message: ProofOfAgreementMsg{
			AgreementCID:  agreementCID,
			App:           AppName,
			SignatureCIDs: []CID{"posiCIDXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"},
		},
		ProofCID: CID("poagCIDXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"),
	}

	if err := s.StoreAgreement(ctx, proof); err != nil {
		t.Fatalf("StoreAgreement: %v", err)
	}

	got, found, err := s.Agreement(ctx, proof.ProofCID)
	if err != nil || !found {
		t.Fatalf("Agreement: found=%v err=%v", found, err)
	}
	if len(got.Message.SignatureCIDs) != 1 {
		t.Fatalf("expected 1 signature CID, got %d", len(got.Message.SignatureCIDs))
	}

	// Agreement records never populate proof2signer.
	_, found, err = s.Proof2Signer(ctx, proof.ProofCID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected no proof2signer entry for an agreement record")
	}
}
