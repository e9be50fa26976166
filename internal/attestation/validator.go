package attestation

import (
	"context"
	"fmt"
)

// AuthorityReader is the read-only slice of Store the Validator needs for
// its cross-referential checks. Decoupled from *Store so validator tests
// can supply a mock.
type AuthorityReader interface {
	Authority(ctx context.Context, cid CID) (SignedProofOfAuthority, bool, error)
	Signature(ctx context.Context, cid CID) (SignedProofOfSignature, bool, error)
	SignerIndex(ctx context.Context, authorityCID CID, addr Address) (int, bool, error)
}

// Validator enforces the structural and cross-referential rules for the
// three proof kinds. Every check returns one of the sentinel errors in
// errors.go; failure aborts the enclosing store* call atomically.
type Validator struct {
	reader AuthorityReader
}

// NewValidator builds a Validator backed by reader for referential checks.
func NewValidator(reader AuthorityReader) *Validator {
	return &Validator{reader: reader}
}

// ValidateProofOfAuthority applies the PoA structural rules.
func (v *Validator) ValidateProofOfAuthority(proofCID CID, m ProofOfAuthorityMsg) error {
	if !proofCID.Valid() {
		return ErrInvalidProofCID
	}
	if m.App != AppName {
		return ErrInvalidAppName
	}
	if m.Name != NameProofOfAuthority {
		return ErrInvalidProofName
	}
	if !m.AgreementCID.Valid() {
		return ErrInvalidAgreementCID
	}
	var zero Address
	for _, s := range m.Signers {
		if s.Addr == zero {
			return ErrInvalidSigner
		}
	}
	return nil
}

// ValidateProofOfSignature applies the PoS structural and referential
// rules. It resolves the authority the message claims to acknowledge and
// confirms the signer is registered in that authority's signer set.
//
// The original contract's index-map default (returning 0 for an unknown
// key, so the check degrades to "signers[0].addr == message.signer") is
// replaced here with an explicit lookup-then-check: absence of the
// signer in the index is treated directly as "signer not registered"
// instead of being laundered through a default zero index.
func (v *Validator) ValidateProofOfSignature(ctx context.Context, proofCID CID, m ProofOfSignatureMsg) error {
	if !proofCID.Valid() {
		return ErrInvalidProofCID
	}
	if m.App != AppName {
		return ErrInvalidAppName
	}
	if m.Name != NameProofOfSignature {
		return ErrInvalidProofName
	}

	authority, found, err := v.reader.Authority(ctx, m.AgreementCID)
	if err != nil {
		return fmt.Errorf("lookup authority %q: %w", m.AgreementCID, err)
	}
	if !found {
		return ErrInvalidSigner
	}
	idx, ok, err := v.reader.SignerIndex(ctx, m.AgreementCID, m.Signer)
	if err != nil {
		return fmt.Errorf("lookup signer index: %w", err)
	}
	if !ok || idx >= len(authority.Message.Signers) || authority.Message.Signers[idx].Addr != m.Signer {
		return ErrInvalidSigner
	}
	return nil
}

// ValidateProofOfAgreement applies the PoAgr structural and referential
// rules: the referenced authority must exist, the signature-CID count
// must match the authority's signer count exactly, and every referenced
// Proof-of-Signature's signer must belong to the authority's signer set.
func (v *Validator) ValidateProofOfAgreement(ctx context.Context, proofCID CID, m ProofOfAgreementMsg) error {
	if !proofCID.Valid() {
		return ErrInvalidProofCID
	}
	if m.App != AppName {
		return ErrInvalidAppName
	}

	authority, found, err := v.reader.Authority(ctx, m.AgreementCID)
	if err != nil {
		return fmt.Errorf("lookup authority %q: %w", m.AgreementCID, err)
	}
	if !found || authority.Message.Name != NameProofOfAuthority {
		return ErrInvalidAuthorityName
	}
	if len(authority.Message.Signers) != len(m.SignatureCIDs) {
		return ErrInvalidSigCIDsLength
	}
	for _, sigCID := range m.SignatureCIDs {
		sig, found, err := v.reader.Signature(ctx, sigCID)
		if err != nil {
			return fmt.Errorf("lookup signature %q: %w", sigCID, err)
		}
		if !found {
			return ErrInvalidSigCIDsSigner
		}
		if _, ok, err := v.reader.SignerIndex(ctx, m.AgreementCID, sig.Message.Signer); err != nil {
			return fmt.Errorf("lookup signer index: %w", err)
		} else if !ok {
			return ErrInvalidSigCIDsSigner
		}
	}
	return nil
}
