package config

// DynamoDBConfig holds configuration for DynamoDB
type DynamoDBConfig struct {
	Region    string `mapstructure:"region"`
	TableName string `mapstructure:"table_name"`
	// Endpoint overrides the service endpoint, e.g. for dynamodb-local
	Endpoint string `mapstructure:"endpoint"`
}
