package devenv

// PostgresTestConfig points integration tests at an already running postgres
// instead of starting a container, read from dev/.state/postgres.json5.
type PostgresTestConfig struct {
	DSN string `json:"dsn"`
}

// S3TestConfig points integration tests at an S3 compatible bucket, read from
// dev/.state/s3.json5.
type S3TestConfig struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}
