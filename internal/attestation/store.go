package attestation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const (
	poauHashKey         = "daosign:poau"
	posiHashKey         = "daosign:posi"
	poagHashKey         = "daosign:poag"
	proof2signerHashKey = "daosign:proof2signer"

	poauSignersIdxKeyPrefix = "daosign:poausignersidx:"
)

func poauSignersIdxKey(authorityCID CID) string {
	return poauSignersIdxKeyPrefix + string(authorityCID)
}

// storeAuthorityScript atomically writes a Proof-of-Authority record,
// rebuilds its signer index, and records its recovered signer in one
// round trip: the three Redis hashes must never be observed out of sync
// with each other.
//
// KEYS[1] = poau hash
// KEYS[2] = signer-index hash for this authority's proof CID
// KEYS[3] = proof2signer hash
// ARGV[1] = proof CID (hash field shared by KEYS[1] and KEYS[3])
// ARGV[2] = JSON-encoded SignedProofOfAuthority
// ARGV[3] = recovered signer address (message.from)
// ARGV[4..] = signer address, index pairs
var storeAuthorityScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[3])
redis.call('DEL', KEYS[2])
for i = 4, #ARGV, 2 do
  redis.call('HSET', KEYS[2], ARGV[i], ARGV[i+1])
end
return redis.status_reply('OK')
`)

// storeSignatureScript atomically writes a Proof-of-Signature record and
// its proof2signer entry.
//
// KEYS[1] = posi hash
// KEYS[2] = proof2signer hash
// ARGV[1] = proof CID
// ARGV[2] = JSON-encoded SignedProofOfSignature
// ARGV[3] = recovered signer address (message.signer)
var storeSignatureScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
return redis.status_reply('OK')
`)

// Store is the Redis-backed persistence layer for the three proof record
// types. Every store* call holds the write lock for its full duration, so
// concurrent callers never observe a record mid-write; read* calls only
// need the read lock and may run concurrently with each other.
type Store struct {
	mu  sync.RWMutex
	rdb *redis.Client
}

// NewStore builds a Store backed by rdb.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// StoreAuthority persists proof and rebuilds its signer index atomically.
// A proof already present at the same CID is silently overwritten (CIDs
// are content-addressed; two writers computing the same CID trivially
// agree on its contents).
func (s *Store) StoreAuthority(ctx context.Context, proof SignedProofOfAuthority) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("marshal authority: %w", err)
	}

	argv := make([]interface{}, 0, 3+len(proof.Message.Signers)*2)
	argv = append(argv, string(proof.ProofCID), string(raw), proof.Message.From.Hex())
	for i, signer := range proof.Message.Signers {
		argv = append(argv, signer.Addr.Hex(), strconv.Itoa(i))
	}

	keys := []string{poauHashKey, poauSignersIdxKey(proof.ProofCID), proof2signerHashKey}
	if err := storeAuthorityScript.Run(ctx, s.rdb, keys, argv...).Err(); err != nil {
		return fmt.Errorf("store authority: %w", err)
	}
	return nil
}

// StoreSignature persists proof and its proof2signer entry atomically.
func (s *Store) StoreSignature(ctx context.Context, proof SignedProofOfSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("marshal signature: %w", err)
	}
	keys := []string{posiHashKey, proof2signerHashKey}
	argv := []interface{}{string(proof.ProofCID), string(raw), proof.Message.Signer.Hex()}
	if err := storeSignatureScript.Run(ctx, s.rdb, keys, argv...).Err(); err != nil {
		return fmt.Errorf("store signature: %w", err)
	}
	return nil
}

// StoreAgreement persists proof. Single-key write; no script needed.
func (s *Store) StoreAgreement(ctx context.Context, proof SignedProofOfAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("marshal agreement: %w", err)
	}
	if err := s.rdb.HSet(ctx, poagHashKey, string(proof.ProofCID), string(raw)).Err(); err != nil {
		return fmt.Errorf("store agreement: %w", err)
	}
	return nil
}

// Authority looks up a stored Proof-of-Authority by its proof CID.
func (s *Store) Authority(ctx context.Context, cid CID) (SignedProofOfAuthority, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.rdb.HGet(ctx, poauHashKey, string(cid)).Result()
	if err == redis.Nil {
		return SignedProofOfAuthority{}, false, nil
	}
	if err != nil {
		return SignedProofOfAuthority{}, false, fmt.Errorf("get authority: %w", err)
	}
	var proof SignedProofOfAuthority
	if err := json.Unmarshal([]byte(raw), &proof); err != nil {
		return SignedProofOfAuthority{}, false, fmt.Errorf("unmarshal authority: %w", err)
	}
	return proof, true, nil
}

// Signature looks up a stored Proof-of-Signature by its proof CID.
func (s *Store) Signature(ctx context.Context, cid CID) (SignedProofOfSignature, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.rdb.HGet(ctx, posiHashKey, string(cid)).Result()
	if err == redis.Nil {
		return SignedProofOfSignature{}, false, nil
	}
	if err != nil {
		return SignedProofOfSignature{}, false, fmt.Errorf("get signature: %w", err)
	}
	var proof SignedProofOfSignature
	if err := json.Unmarshal([]byte(raw), &proof); err != nil {
		return SignedProofOfSignature{}, false, fmt.Errorf("unmarshal signature: %w", err)
	}
	return proof, true, nil
}

// Agreement looks up a stored Proof-of-Agreement by its proof CID.
func (s *Store) Agreement(ctx context.Context, cid CID) (SignedProofOfAgreement, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.rdb.HGet(ctx, poagHashKey, string(cid)).Result()
	if err == redis.Nil {
		return SignedProofOfAgreement{}, false, nil
	}
	if err != nil {
		return SignedProofOfAgreement{}, false, fmt.Errorf("get agreement: %w", err)
	}
	var proof SignedProofOfAgreement
	if err := json.Unmarshal([]byte(raw), &proof); err != nil {
		return SignedProofOfAgreement{}, false, fmt.Errorf("unmarshal agreement: %w", err)
	}
	return proof, true, nil
}

// SignerIndex returns the position of addr within the signer list of the
// Proof-of-Authority stored at authorityCID, if present.
func (s *Store) SignerIndex(ctx context.Context, authorityCID CID, addr Address) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.rdb.HGet(ctx, poauSignersIdxKey(authorityCID), addr.Hex()).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get signer index: %w", err)
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse signer index: %w", err)
	}
	return idx, true, nil
}

// Proof2Signer returns the recovered signer address stored for proofCID
// at write time (Authority → message.from, Signature → message.signer;
// Agreement records never populate this map).
func (s *Store) Proof2Signer(ctx context.Context, proofCID CID) (Address, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.rdb.HGet(ctx, proof2signerHashKey, string(proofCID)).Result()
	if err == redis.Nil {
		return Address{}, false, nil
	}
	if err != nil {
		return Address{}, false, fmt.Errorf("get proof2signer: %w", err)
	}
	return common.HexToAddress(raw), true, nil
}
