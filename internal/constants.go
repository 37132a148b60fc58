package internal

const (
	DotEnvPath              = "./.env"
	MigrationsDir           = "migrations"
	PublicDir               = "public"
	DBTimestampLayout       = "2006-01-02 15:04:05"
	SessionCookie           = "session"
	WebhookTriggerKeyHeader = "X-Textpipe-Webhook-Key"
	WebhookDeliveryHeader   = "X-Textpipe-Delivery"

	// Fixed paths inside the managed processing container.
	ProcessingInputDir      = "/opt/ml/processing/input"
	ProcessingTrainDir      = "/opt/ml/processing/train"
	ProcessingTestDir       = "/opt/ml/processing/test"
	ProcessingEvaluationDir = "/opt/ml/processing/evaluation"

	// Evaluation report produced by the train-eval step and read by the
	// deploy-gating condition.
	EvaluationFileName = "evaluation.json"
)
