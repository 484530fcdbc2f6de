package oracle

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

// ProofDigest is the message the oracle signs: sha256 over the token
// bytes followed by the raw cleartext payload. Binding the token into
// the digest stops a valid proof from being replayed under another
// request.
func ProofDigest(token Token, cleartexts []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(token))
	h.Write(cleartexts)
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// ProofVerifier checks that a callback really came from the oracle.
// Verification is mandatory and happens before the cleartexts are used
// in any way.
type ProofVerifier interface {
	VerifyProof(token Token, cleartexts, proof []byte) bool
}

// Ed25519Verifier verifies proofs against the oracle's public key.
type Ed25519Verifier struct {
	PublicKey ed25519.PublicKey
}

func (v *Ed25519Verifier) VerifyProof(token Token, cleartexts, proof []byte) bool {
	if len(v.PublicKey) != ed25519.PublicKeySize {
		return false
	}
	digest := ProofDigest(token, cleartexts)
	return ed25519.Verify(v.PublicKey, digest[:], proof)
}

// VerifierFromEnv loads the oracle public key from ORACLE_PUBKEY
// (base64-encoded, 32 bytes after decoding).
func VerifierFromEnv() (*Ed25519Verifier, error) {
	b64 := os.Getenv("ORACLE_PUBKEY")
	if b64 == "" {
		return nil, errors.New("ORACLE_PUBKEY not set in environment")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errors.New("failed to decode ORACLE_PUBKEY: " + err.Error())
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ORACLE_PUBKEY must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return &Ed25519Verifier{PublicKey: ed25519.PublicKey(raw)}, nil
}

// SignProof produces the proof for a callback payload. The oracle side
// of the protocol; used by tools and tests playing the oracle.
func SignProof(priv ed25519.PrivateKey, token Token, cleartexts []byte) []byte {
	digest := ProofDigest(token, cleartexts)
	return ed25519.Sign(priv, digest[:])
}
