package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server with local defaults
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI is the mode for running the API server in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

// StoreType selects the document store backend
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeDynamoDB StoreType = "dynamodb"
)
