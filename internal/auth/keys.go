package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/user-service/internal/config"
)

// ErrAsymmetricOnly is returned by key-export operations in HS256 mode,
// where no public key exists to share.
var ErrAsymmetricOnly = errors.New("operation requires RS256 signing mode")

// SigningKeys holds the process-wide signing material, loaded once at
// startup and immutable afterwards. In RS256 mode only the private key
// signs and only the public key verifies.
type SigningKeys struct {
	algorithm  string
	secret     []byte
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// LoadSigningKeys parses configured key material for the selected algorithm.
func LoadSigningKeys(cfg config.AuthConfig) (*SigningKeys, error) {
	switch cfg.Algorithm {
	case "HS256":
		if cfg.JWTSecret == "" {
			return nil, errors.New("AUTH_JWT_SECRET is required for HS256")
		}
		return &SigningKeys{algorithm: "HS256", secret: []byte(cfg.JWTSecret)}, nil
	case "RS256":
		if cfg.PrivateKeyPEM == "" || cfg.PublicKeyPEM == "" {
			return nil, errors.New("AUTH_JWT_PRIVATE_KEY and AUTH_JWT_PUBLIC_KEY are required for RS256")
		}
		priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		return &SigningKeys{algorithm: "RS256", privateKey: priv, publicKey: pub}, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
}

// Method returns the jwt signing method bound at construction.
func (k *SigningKeys) Method() jwt.SigningMethod {
	if k.algorithm == "RS256" {
		return jwt.SigningMethodRS256
	}
	return jwt.SigningMethodHS256
}

// Algorithm returns the configured algorithm name.
func (k *SigningKeys) Algorithm() string {
	return k.algorithm
}

// SignKey returns the key used to sign tokens.
func (k *SigningKeys) SignKey() any {
	if k.algorithm == "RS256" {
		return k.privateKey
	}
	return k.secret
}

// VerifyKey returns the key used to verify signatures. For RS256 this is
// the public key only.
func (k *SigningKeys) VerifyKey() any {
	if k.algorithm == "RS256" {
		return k.publicKey
	}
	return k.secret
}

// PublicKeyPEM exports the verification key in PEM form for other services.
func (k *SigningKeys) PublicKeyPEM() (string, error) {
	if k.algorithm != "RS256" {
		return "", ErrAsymmetricOnly
	}
	der, err := x509.MarshalPKIXPublicKey(k.publicKey)
	if err != nil {
		return "", err
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return string(block), nil
}

// JWK is a single RSA verification key in RFC 7517 form.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is the JSON Web Key Set discovery document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS builds the key set from the public key on demand; nothing is cached.
func (k *SigningKeys) JWKS() (*JWKS, error) {
	if k.algorithm != "RS256" {
		return nil, ErrAsymmetricOnly
	}
	return &JWKS{
		Keys: []JWK{{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(k.publicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.publicKey.E)).Bytes()),
		}},
	}, nil
}
