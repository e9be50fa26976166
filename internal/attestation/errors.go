package attestation

import "errors"

// Sentinel errors returned by the Validator and the Recoverer, wrapping
// the exact message strings the original DAOSign contracts revert with.
var (
	ErrInvalidProofCID      = errors.New("Invalid proof CID")
	ErrInvalidAppName       = errors.New("Invalid app name")
	ErrInvalidProofName     = errors.New("Invalid proof name")
	ErrInvalidAgreementCID  = errors.New("Invalid agreement CID")
	ErrInvalidSigner        = errors.New("Invalid signer")
	ErrInvalidAuthorityName = errors.New("Invalid Proof-of-Authority name")
	ErrInvalidSigCIDsLength = errors.New("Invalid Proofs-of-Signatures length")
	ErrInvalidSigCIDsSigner = errors.New("Invalid Proofs-of-Signature signer")
	ErrInvalidSignature     = errors.New("Invalid signature")
)
