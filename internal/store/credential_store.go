package store

import "context"

// Credential is an SSH identity used to pull datasets from a data source.
// The private key itself is stored AES-encrypted on disk, addressed by its
// hash; only the hash lives in the database.
type Credential struct {
	CredentialID      int64
	Username          string
	Description       string
	SSHPrivateKeyHash string

	SSHPrivateKey []byte
}

type CredentialStore interface {
	CreateCredential(context.Context, string, string, string) (*Credential, error)
	ReadCredentialByID(context.Context, int64) (*Credential, error)
	UpdateCredential(context.Context, int64, string, string) error
	DeleteCredential(context.Context, int64) error
	ListCredentials(context.Context) ([]*Credential, error)
}
