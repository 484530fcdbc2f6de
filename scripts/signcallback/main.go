package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/core/oracle"
)

// Builds a signed oracle callback body for testing against a local
// node. The private key comes from ORACLE_PRIVKEY; never log it.
func main() {
	privKeyB64 := os.Getenv("ORACLE_PRIVKEY")
	if privKeyB64 == "" {
		fmt.Fprintln(os.Stderr, "ORACLE_PRIVKEY not set in environment")
		os.Exit(1)
	}
	privKeyBytes, err := base64.StdEncoding.DecodeString(privKeyB64)
	if err != nil {
		panic(err)
	}
	if len(privKeyBytes) != ed25519.PrivateKeySize {
		fmt.Fprintf(os.Stderr, "ORACLE_PRIVKEY is not %d bytes after base64 decoding (got %d)\n", ed25519.PrivateKeySize, len(privKeyBytes))
		os.Exit(1)
	}
	privKey := ed25519.PrivateKey(privKeyBytes)

	// Print the derived public key for debug
	pubKey := privKey.Public().(ed25519.PublicKey)
	fmt.Fprintf(os.Stderr, "Derived public key: %s\n", base64.StdEncoding.EncodeToString(pubKey))

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <requestId> [cleartext ...]\n", os.Args[0])
		os.Exit(1)
	}
	token := oracle.Token(os.Args[1])
	values := os.Args[2:]

	cleartexts, err := oracle.EncodeCleartextList(values)
	if err != nil {
		panic(err)
	}
	proof := oracle.SignProof(privKey, token, cleartexts)

	callback := map[string]interface{}{
		"requestId":  string(token),
		"cleartexts": base64.StdEncoding.EncodeToString(cleartexts),
		"proof":      base64.StdEncoding.EncodeToString(proof),
	}
	finalJSON, err := json.MarshalIndent(callback, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(finalJSON))

	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "Signed %d cleartext value(s) for request %s\n", len(values), token)
	}
}
