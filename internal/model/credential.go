package model

import "time"

// Environment selects the MyInvois endpoint set a tenant submits to.
type Environment string

const (
	EnvSandbox    Environment = "SANDBOX"
	EnvProduction Environment = "PRODUCTION"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	return e == EnvSandbox || e == EnvProduction
}

// Credential is the per-tenant MyInvois API credential record. The client
// secret is stored encrypted at rest and decrypted on demand by the vault;
// the plaintext never appears in logs or persisted state.
type Credential struct {
	TenantID        string      `json:"tenantId"`
	ClientID        string      `json:"clientId"`
	EncryptedSecret []byte      `json:"-"`
	TIN             string      `json:"tin"`
	BRN             string      `json:"brn,omitempty"`
	IDType          string      `json:"idType"`
	IDValue         string      `json:"idValue"`
	Environment     Environment `json:"environment"`
	Active          bool        `json:"active"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
