package config

type WorkerKeyStruct struct {
	ImportJobsQueue string
	AuditLogQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	ImportJobsQueue: "import_jobs_queue",
	AuditLogQueue:   "persist_audit_logs_queue",
}
