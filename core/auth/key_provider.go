package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"io/ioutil"
)

type KeyProvider interface {
	GetPublicKey(kid string) (interface{}, error)
}

// StaticKeyProvider serves one fixed RSA public key regardless of kid.
type StaticKeyProvider struct {
	PublicKey *rsa.PublicKey
}

func (p *StaticKeyProvider) GetPublicKey(kid string) (interface{}, error) {
	if p.PublicKey != nil {
		return p.PublicKey, nil
	}
	return nil, errors.New("no public key set")
}

// LoadRSAPublicKey reads an RS256 verification key from a PEM file.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, errors.New("failed to decode PEM block containing public key: " + path)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key: " + path)
	}
	return rsaPub, nil
}
