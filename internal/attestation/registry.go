package attestation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ProofView is the enriched read response: the raw signed record bundled
// with the static EIP-712 schema descriptors and the domain it was
// signed under.
type ProofView[T TypedMessage] struct {
	Domain      Domain                 `json:"domain"`
	Types       map[string][]TypeField `json:"types"`
	PrimaryType string                 `json:"primaryType"`
	Message     T                      `json:"message"`
	Signature   Bytes65Sig             `json:"signature"`
}

// Registry is the public API of the attestation package: it wires the
// Hasher, the Recoverer, the Validator and the Store together behind the
// three store*/get* operation pairs, and emits one event per successful
// write.
type Registry struct {
	hasher    *Hasher
	validator *Validator
	store     *Store
	bus       *Bus
	log       *zap.Logger
}

// NewRegistry builds a Registry. store doubles as the Validator's
// AuthorityReader, so referential checks always see committed state.
func NewRegistry(store *Store, bus *Bus, log *zap.Logger) *Registry {
	return &Registry{
		hasher:    NewHasher(),
		validator: NewValidator(store),
		store:     store,
		bus:       bus,
		log:       log,
	}
}

// StoreProofOfAuthority recovers the signer from the message digest,
// requires it to equal message.from, validates the message, then
// persists it and emits NewProofOfAuthority. Any failure leaves no
// trace in the store.
func (r *Registry) StoreProofOfAuthority(ctx context.Context, proof SignedProofOfAuthority) error {
	digest := r.hasher.Digest(proof.Message)
	recovered, err := Recover(digest, proof.Signature)
	if err != nil {
		return err
	}
	if recovered != proof.Message.From {
		return fmt.Errorf("%w: recovered %s, want from %s", ErrInvalidSignature, recovered, proof.Message.From)
	}
	if err := r.validator.ValidateProofOfAuthority(proof.ProofCID, proof.Message); err != nil {
		return err
	}
	if err := r.store.StoreAuthority(ctx, proof); err != nil {
		return err
	}
	r.bus.Publish(ctx, Event{Kind: EventNewProofOfAuthority, ProofCID: proof.ProofCID})
	if r.log != nil {
		r.log.Info("stored proof of authority", zap.String("proofCID", string(proof.ProofCID)))
	}
	return nil
}

// StoreProofOfSignature recovers the signer from the message digest,
// requires it to equal message.signer, validates the message against
// its referenced authority, then persists it and emits
// NewProofOfSignature.
func (r *Registry) StoreProofOfSignature(ctx context.Context, proof SignedProofOfSignature) error {
	digest := r.hasher.Digest(proof.Message)
	recovered, err := Recover(digest, proof.Signature)
	if err != nil {
		return err
	}
	if recovered != proof.Message.Signer {
		return fmt.Errorf("%w: recovered %s, want signer %s", ErrInvalidSignature, recovered, proof.Message.Signer)
	}
	if err := r.validator.ValidateProofOfSignature(ctx, proof.ProofCID, proof.Message); err != nil {
		return err
	}
	if err := r.store.StoreSignature(ctx, proof); err != nil {
		return err
	}
	r.bus.Publish(ctx, Event{Kind: EventNewProofOfSignature, ProofCID: proof.ProofCID})
	if r.log != nil {
		r.log.Info("stored proof of signature", zap.String("proofCID", string(proof.ProofCID)))
	}
	return nil
}

// StoreProofOfAgreement validates and persists proof. There is no
// recovery gate: agreement records carry no signer field to check
// against, since they are meant to be assembled by the system once every
// authority signer has countersigned.
func (r *Registry) StoreProofOfAgreement(ctx context.Context, proof SignedProofOfAgreement) error {
	if err := r.validator.ValidateProofOfAgreement(ctx, proof.ProofCID, proof.Message); err != nil {
		return err
	}
	if err := r.store.StoreAgreement(ctx, proof); err != nil {
		return err
	}
	r.bus.Publish(ctx, Event{Kind: EventNewProofOfAgreement, ProofCID: proof.ProofCID})
	if r.log != nil {
		r.log.Info("stored proof of agreement", zap.String("proofCID", string(proof.ProofCID)))
	}
	return nil
}

// GetProofOfAuthority returns the enriched view of the record stored at
// cid. found is false for an unknown CID, matching the zero-valued
// record the view would otherwise carry.
func (r *Registry) GetProofOfAuthority(ctx context.Context, cid CID) (ProofView[ProofOfAuthorityMsg], bool, error) {
	proof, found, err := r.store.Authority(ctx, cid)
	if err != nil || !found {
		return ProofView[ProofOfAuthorityMsg]{}, found, err
	}
	return ProofView[ProofOfAuthorityMsg]{
		Domain:      DefaultDomain,
		Types:       TypedDataSchema(proof.Message),
		PrimaryType: PrimaryType(proof.Message),
		Message:     proof.Message,
		Signature:   proof.Signature,
	}, true, nil
}

// GetProofOfSignature returns the enriched view of the record stored at
// cid.
func (r *Registry) GetProofOfSignature(ctx context.Context, cid CID) (ProofView[ProofOfSignatureMsg], bool, error) {
	proof, found, err := r.store.Signature(ctx, cid)
	if err != nil || !found {
		return ProofView[ProofOfSignatureMsg]{}, found, err
	}
	return ProofView[ProofOfSignatureMsg]{
		Domain:      DefaultDomain,
		Types:       TypedDataSchema(proof.Message),
		PrimaryType: PrimaryType(proof.Message),
		Message:     proof.Message,
		Signature:   proof.Signature,
	}, true, nil
}

// GetProofOfAgreement returns the enriched view of the record stored at
// cid.
func (r *Registry) GetProofOfAgreement(ctx context.Context, cid CID) (ProofView[ProofOfAgreementMsg], bool, error) {
	proof, found, err := r.store.Agreement(ctx, cid)
	if err != nil || !found {
		return ProofView[ProofOfAgreementMsg]{}, found, err
	}
	return ProofView[ProofOfAgreementMsg]{
		Domain:      DefaultDomain,
		Types:       TypedDataSchema(proof.Message),
		PrimaryType: PrimaryType(proof.Message),
		Message:     proof.Message,
		Signature:   proof.Signature,
	}, true, nil
}
