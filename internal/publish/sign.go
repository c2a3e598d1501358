package publish

import (
	"bytes"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// SignatureExt is appended to signed files.
const SignatureExt = ".asc"

// Signer produces ASCII-armored detached OpenPGP signatures.
type Signer struct {
	entity *openpgp.Entity
}

// LoadSigner reads the armored private key from the variable named by
// cfg.SigningKeyEnv or, failing that, from cfg.SigningKeyFile, and unlocks it
// with the passphrase variable.
func LoadSigner(cfg config.PublishConfig, lookup LookupFunc) (*Signer, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var armored []byte
	if v, ok := lookup(cfg.SigningKeyEnv); ok && v != "" {
		armored = []byte(v)
	} else if cfg.SigningKeyFile != "" {
		data, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, errors.SigningError("cannot read signing key").
				WithContext("path", cfg.SigningKeyFile).WithCause(err).Build()
		}
		armored = data
	} else {
		return nil, errors.SigningError("no signing key configured").
			WithContext("variable", cfg.SigningKeyEnv).Build()
	}

	keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armored))
	if err != nil {
		return nil, errors.SigningError("cannot parse signing key").WithCause(err).Build()
	}
	var entity *openpgp.Entity
	for _, e := range keys {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, errors.SigningError("signing key has no private part").Build()
	}

	passphrase, _ := lookup(cfg.SigningPassphraseEnv)
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return nil, errors.SigningError("cannot unlock signing key").WithCause(err).Build()
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, errors.SigningError("cannot unlock signing subkey").WithCause(err).Build()
			}
		}
	}
	return &Signer{entity: entity}, nil
}

// NewSigner wraps an already unlocked entity.
func NewSigner(e *openpgp.Entity) *Signer { return &Signer{entity: e} }

// SignFile writes path+".asc" and returns its name.
func (s *Signer) SignFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", errors.SigningError("cannot open artifact").WithContext("path", path).WithCause(err).Build()
	}
	defer in.Close()

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, s.entity, in, nil); err != nil {
		return "", errors.SigningError("cannot sign artifact").WithContext("path", path).WithCause(err).Build()
	}
	out := path + SignatureExt
	if err := os.WriteFile(out, sig.Bytes(), 0o644); err != nil {
		return "", errors.SigningError("cannot write signature").WithContext("path", out).WithCause(err).Build()
	}
	return out, nil
}
