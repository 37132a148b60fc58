package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jhalttu/textpipe/internal/store"
	"golang.org/x/crypto/ssh"
)

type DataSourceServicer interface {
	CreateDataSource(
		ctx context.Context,
		credentialID int64,
		name, hostname, rootPath, description string,
	) (*store.DataSource, error)
	GetDataSourceByID(context.Context, int64) (*store.DataSource, error)
	GetDataSourceAndCredentials(context.Context, int64) (*store.DataSource, []*store.Credential, error)
	ListDataSources(context.Context) ([]*store.DataSource, error)
	ListDataSourcesAndCredentials(context.Context) ([]*store.DataSource, []*store.Credential, error)
	UpdateDataSource(
		ctx context.Context,
		dataSourceID, credentialID int64,
		name, hostname, rootPath, description string,
	) error
	DeleteDataSource(context.Context, int64) error

	TestDataSourceConnection(context.Context, int64) error
}

type DataSourceService struct {
	dataSourceStore store.DataSourceStore

	credentialService CredentialServicer
}

func NewDataSourceService(s store.DataSourceStore, cs CredentialServicer) *DataSourceService {
	return &DataSourceService{dataSourceStore: s, credentialService: cs}
}

func (s *DataSourceService) CreateDataSource(
	ctx context.Context,
	credentialID int64,
	name, hostname, rootPath, description string,
) (*store.DataSource, error) {
	ds, err := s.dataSourceStore.CreateDataSource(
		ctx,
		credentialID,
		name,
		hostname,
		rootPath,
		description,
	)
	return ds, err
}

func (s *DataSourceService) GetDataSourceByID(
	ctx context.Context,
	dataSourceID int64,
) (*store.DataSource, error) {
	ds, err := s.dataSourceStore.ReadDataSourceByID(ctx, dataSourceID)
	return ds, err
}

func (s *DataSourceService) GetDataSourceAndCredentials(
	ctx context.Context,
	id int64,
) (*store.DataSource, []*store.Credential, error) {
	ds, err := s.dataSourceStore.ReadDataSourceByID(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}
	credentials, err := s.credentialService.ListCredentials(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ds, credentials, nil
}

func (s *DataSourceService) ListDataSources(ctx context.Context) ([]*store.DataSource, error) {
	return s.dataSourceStore.ListDataSources(ctx)
}

func (s *DataSourceService) ListDataSourcesAndCredentials(
	ctx context.Context,
) ([]*store.DataSource, []*store.Credential, error) {
	sources, err := s.dataSourceStore.ListDataSources(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}

	credentials, err := s.credentialService.ListCredentials(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}

	return sources, credentials, nil
}

func (s *DataSourceService) UpdateDataSource(
	ctx context.Context,
	dataSourceID, credentialID int64,
	name, hostname, rootPath, description string,
) error {
	err := s.dataSourceStore.UpdateDataSource(
		ctx,
		dataSourceID,
		credentialID,
		name,
		hostname,
		rootPath,
		description,
	)
	return err
}

func (s *DataSourceService) DeleteDataSource(ctx context.Context, dataSourceID int64) error {
	return s.dataSourceStore.DeleteDataSource(ctx, dataSourceID)
}

func (s *DataSourceService) TestDataSourceConnection(ctx context.Context, dataSourceID int64) error {
	ds, err := s.GetDataSourceByID(ctx, dataSourceID)
	if err != nil {
		return err
	}
	if ds.DataSourceCredentialID == nil {
		return errors.New("data source has no credential")
	}

	cred, err := s.credentialService.GetCredentialByID(ctx, *ds.DataSourceCredentialID)
	if err != nil {
		return err
	}

	privateKey, err := s.credentialService.DecryptAES(cred.SSHPrivateKeyHash)
	if err != nil {
		return err
	}
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}
	auth := ssh.PublicKeys(signer)
	cc := &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	hostname := ds.Hostname
	split := strings.Split(ds.Hostname, ":")
	if len(split) == 1 {
		hostname += ":22"
	}

	client, err := ssh.Dial("tcp", hostname, cc)
	if err != nil {
		return err
	}
	defer client.Close()
	return nil
}
