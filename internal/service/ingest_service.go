package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jhalttu/textpipe/internal/store"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// ObjectUploader is the slice of the object storage client the ingest
// service needs.
type ObjectUploader interface {
	PutObjectStream(ctx context.Context, bucket, key string, body io.Reader) error
}

// IngestService pulls datasets from a data source over SFTP and uploads
// them to the artifact bucket, where pipeline executions read them.
type IngestService struct {
	dataSourceStore   store.DataSourceStore
	credentialService CredentialServicer
	uploader          ObjectUploader
}

func NewIngestService(
	dataSourceStore store.DataSourceStore,
	credentialService CredentialServicer,
	uploader ObjectUploader,
) *IngestService {
	return &IngestService{
		dataSourceStore:   dataSourceStore,
		credentialService: credentialService,
		uploader:          uploader,
	}
}

// IngestResult summarizes one ingest run.
type IngestResult struct {
	DataSource string   `json:"data_source"`
	Bucket     string   `json:"bucket"`
	KeyPrefix  string   `json:"key_prefix"`
	Keys       []string `json:"keys"`
}

// IngestDataSource copies every file under remotePath (relative to the data
// source's root path) into bucket under keyPrefix, preserving the directory
// layout.
func (s *IngestService) IngestDataSource(
	ctx context.Context,
	dataSourceID int64,
	remotePath, bucket, keyPrefix string,
) (*IngestResult, error) {
	ds, err := s.dataSourceStore.ReadDataSourceByID(ctx, dataSourceID)
	if err != nil {
		return nil, err
	}
	if ds.DataSourceCredentialID == nil {
		return nil, fmt.Errorf("data source %s has no credential", ds.Name)
	}
	cred, err := s.credentialService.GetCredentialByID(ctx, *ds.DataSourceCredentialID)
	if err != nil {
		return nil, err
	}
	privateKey, err := s.credentialService.DecryptAES(cred.SSHPrivateKeyHash)
	if err != nil {
		return nil, err
	}

	client, err := dialSSH(cred.Username, ds.Hostname, privateKey)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, err
	}
	defer sftpClient.Close()

	result := &IngestResult{
		DataSource: ds.Name,
		Bucket:     bucket,
		KeyPrefix:  keyPrefix,
	}
	root := path.Join(ds.RootPath, remotePath)
	if err := s.uploadTree(ctx, sftpClient, root, bucket, keyPrefix, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *IngestService) uploadTree(
	ctx context.Context,
	sftpClient *sftp.Client,
	remotePath, bucket, keyPrefix string,
	result *IngestResult,
) error {
	info, err := sftpClient.Stat(remotePath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return s.uploadFile(
			ctx, sftpClient, remotePath, bucket,
			path.Join(keyPrefix, path.Base(remotePath)),
			result,
		)
	}

	files, err := sftpClient.ReadDir(remotePath)
	if err != nil {
		return err
	}
	for _, f := range files {
		remoteFilePath := path.Join(remotePath, f.Name())
		key := path.Join(keyPrefix, f.Name())
		if f.IsDir() {
			if err := s.uploadTree(
				ctx, sftpClient, remoteFilePath, bucket, key, result,
			); err != nil {
				return err
			}
		} else {
			if err := s.uploadFile(
				ctx, sftpClient, remoteFilePath, bucket, key, result,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *IngestService) uploadFile(
	ctx context.Context,
	sftpClient *sftp.Client,
	remotePath, bucket, key string,
	result *IngestResult,
) error {
	remoteFile, err := sftpClient.Open(remotePath)
	if err != nil {
		return err
	}
	defer remoteFile.Close()

	if err := s.uploader.PutObjectStream(ctx, bucket, key, remoteFile); err != nil {
		return err
	}
	result.Keys = append(result.Keys, key)
	return nil
}

func dialSSH(username, hostname string, privateKey []byte) (*ssh.Client, error) {
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	auth := ssh.PublicKeys(signer)
	cc := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	split := strings.Split(hostname, ":")
	if len(split) == 1 {
		hostname += ":22"
	}
	return ssh.Dial("tcp", hostname, cc)
}
