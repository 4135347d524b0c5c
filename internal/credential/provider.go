package credential

import (
	"github.com/hnrobert/remlogon/internal/fields"
)

// NoDefault marks that no credential tile is pre-selected.
const NoDefault = -1

// Provider is the facade the host enumerates: one credential, the fixed
// field table, never an automatic logon.
type Provider struct {
	cred *Credential
}

func NewProvider(v Validator) *Provider {
	return &Provider{cred: New(v)}
}

func (p *Provider) FieldCount() int {
	return fields.Count()
}

func (p *Provider) FieldAt(index int) (fields.Descriptor, error) {
	return fields.At(index)
}

// Credentials reports the tile count, the default tile and whether the
// default may log on automatically.
func (p *Provider) Credentials() (count, defaultIndex int, autoLogon bool) {
	return 1, NoDefault, false
}

func (p *Provider) CredentialAt(index int) (*Credential, error) {
	if index != 0 {
		return nil, ErrOutOfRange
	}
	return p.cred, nil
}
