package handler

import "github.com/jhalttu/textpipe/internal/store"

type CredentialParams struct {
	CredentialID  int64  `json:"credential_id"    param:"credential_id"`
	Username      string `json:"username"`
	Description   string `json:"description"`
	SSHPrivateKey string `json:"ssh_private_key"`
}

type DataSourceParams struct {
	DataSourceID           int64  `json:"data_source_id"            param:"data_source_id"`
	DataSourceCredentialID int64  `json:"data_source_credential_id"`
	Name                   string `json:"name"`
	Hostname               string `json:"hostname"`
	RootPath               string `json:"root_path"`
	Description            string `json:"description"`
}

type IngestParams struct {
	DataSourceID int64  `param:"data_source_id"`
	RemotePath   string `json:"remote_path"`
	KeyPrefix    string `json:"key_prefix"`
}

type PipelineParams struct {
	PipelineID     int64   `json:"pipeline_id"     param:"pipeline_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Spec           string  `json:"spec"`
	Schedule       *string `json:"schedule"`
	ScheduleParams *string `json:"schedule_params"`
}

type ExecutionParams struct {
	PipelineID  int64             `param:"pipeline_id"`
	ExecutionID int64             `param:"execution_id"`
	Parameters  map[string]string `json:"parameters"`
}

type ListExecutionsParams struct {
	PipelineID int64 `param:"pipeline_id"`
	Page       int64 `                    query:"page"`
}

type PatchUserParams struct {
	UserID int64      `param:"user_id"`
	RoleID store.Role `                json:"role_id"`
}

type PatchUserPasswordParams struct {
	UserID          int64  `param:"user_id" json:"user_id"`
	OldPassword     string `                json:"old_password"`
	Password        string `                json:"password"`
	PasswordConfirm string `                json:"password_confirm"`
}

type UserParams struct {
	UserID          int64      `param:"user_id"`
	UserRoleID      store.Role `                json:"user_role_id"`
	Username        string     `                json:"username"`
	Password        string     `                json:"password"`
	PasswordConfirm string     `                json:"password_confirm"`
}

type APIKeyParams struct {
	ID int64 `param:"id"`
}

type ProfileParams struct {
	TrainingJob   string `param:"training_job"`
	Bins          int    `                     query:"bins"`
	BucketSeconds int64  `                     query:"bucket_seconds"`
	Dimension     string `                     query:"dimension"`
	Busiest       int    `                     query:"busiest"`
	TraceStart    string `                     query:"trace_start"`
}

type ConfigParams struct {
	SessionExpiresHours int64 `json:"session_expires_hours"`
	QueueSize           int64 `json:"queue_size"`
	PollDelaySeconds    int64 `json:"poll_delay_seconds"`
	PollMaxAttempts     int64 `json:"poll_max_attempts"`
}
