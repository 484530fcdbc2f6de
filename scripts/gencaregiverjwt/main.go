package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: %s <caregiver_private.pem> <subject>", os.Args[0])
	}
	privPath := os.Args[1]
	subject := os.Args[2]
	privPem, err := ioutil.ReadFile(privPath)
	if err != nil {
		log.Fatal(err)
	}
	block, _ := pem.Decode(privPem)
	if block == nil {
		log.Fatalf("Failed to decode PEM block from %s", privPath)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		log.Fatal(err)
	}
	privKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		log.Fatal("Not an RSA private key")
	}

	claims := jwt.MapClaims{
		"sub":    subject,
		"roles":  []string{"caregiver"},
		"reason": "routine wellness review",
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(privKey)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("JWT:", signed)
}
