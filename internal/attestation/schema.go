package attestation

// TypeField names one field of an EIP-712 struct type, in declaration
// order, for inclusion in a read response's "types" section.
type TypeField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// The field tables below cover every struct type a message's EIP-712
// typed-data payload references, matching the DAOSignApp.sol type
// strings baked into eip712.go.
var (
	domainSchema = []TypeField{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}

	signerSchema = []TypeField{
		{Name: "addr", Type: "address"},
		{Name: "metadata", Type: "string"},
	}

	proofOfAuthoritySchema = []TypeField{
		{Name: "name", Type: "string"},
		{Name: "from", Type: "address"},
		{Name: "agreementCID", Type: "string"},
		{Name: "signers", Type: "Signer[]"},
		{Name: "app", Type: "string"},
		{Name: "timestamp", Type: "uint256"},
		{Name: "metadata", Type: "string"},
	}

	proofOfSignatureSchema = []TypeField{
		{Name: "name", Type: "string"},
		{Name: "signer", Type: "address"},
		{Name: "agreementCID", Type: "string"},
		{Name: "app", Type: "string"},
		{Name: "timestamp", Type: "uint256"},
		{Name: "metadata", Type: "string"},
	}

	proofOfAgreementSchema = []TypeField{
		{Name: "agreementCID", Type: "string"},
		{Name: "signatureCIDs", Type: "string[]"},
		{Name: "app", Type: "string"},
		{Name: "timestamp", Type: "uint256"},
		{Name: "metadata", Type: "string"},
	}
)

// TypedDataSchema returns the full EIP-712 "types" map for m's primary
// type: the primary struct plus every struct type it transitively
// references, in the shape a typed-data viewer expects.
func TypedDataSchema(m TypedMessage) map[string][]TypeField {
	types := map[string][]TypeField{
		"EIP712Domain": domainSchema,
	}
	switch m.(type) {
	case ProofOfAuthorityMsg:
		types["ProofOfAuthority"] = proofOfAuthoritySchema
		types["Signer"] = signerSchema
	case ProofOfSignatureMsg:
		types["ProofOfSignature"] = proofOfSignatureSchema
	case ProofOfAgreementMsg:
		types["ProofOfAgreement"] = proofOfAgreementSchema
	}
	return types
}
