package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"

	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

// TableAPI is the subset of the DynamoDB client used to manage the document table
type TableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// TableDefinition is the schema every collection is stored in
func TableDefinition(table string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(attrPK), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrSK), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(attrPK), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String(attrSK), KeyType: ddbtypes.KeyTypeRange},
		},
		BillingMode: ddbtypes.BillingModePayPerRequest,
	}
}

// EnsureTable creates the document table unless it already exists. It reports whether
// the table was created.
func EnsureTable(ctx context.Context, api TableAPI, table string) (bool, error) {
	_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return false, nil
	}
	var notFound *ddbtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return false, ierr.WithError(err).
			WithHintf("Unable to describe table %s", table).
			Mark(ierr.ErrDatabase)
	}

	if _, err := api.CreateTable(ctx, TableDefinition(table)); err != nil {
		var inUse *ddbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHintf("Unable to create table %s", table).
			Mark(ierr.ErrDatabase)
	}
	return true, nil
}

// WaitForTable blocks until the table is active or maxWait elapses
func (c *Client) WaitForTable(ctx context.Context, table string, maxWait time.Duration) error {
	waiter := dynamodb.NewTableExistsWaiter(c.db)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, maxWait); err != nil {
		return ierr.WithError(err).
			WithHintf("Table %s did not become active", table).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
