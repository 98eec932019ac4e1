package dynamodb

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"

	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/docstore"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
)

// MaxTransactItems is the DynamoDB limit of actions in one TransactWriteItems call
const MaxTransactItems = 100

const (
	attrPK      = "pk"
	attrSK      = "sk"
	attrVersion = "_version"
	attrDoc     = "doc"
)

// All collections share one table: the partition key is the collection name and the sort
// key the document id. The document itself is kept as its JSON encoding.
type itemKey struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`
}

type item struct {
	PK      string `dynamodbav:"pk"`
	SK      string `dynamodbav:"sk"`
	Version int64  `dynamodbav:"_version"`
	Doc     string `dynamodbav:"doc"`
}

// Store is a docstore backed by a single DynamoDB table
type Store struct {
	api         API
	table       string
	maxAttempts int
	logger      *logger.Logger
}

var _ docstore.Store = (*Store)(nil)

func NewStore(api API, table string, maxAttempts int, log *logger.Logger) *Store {
	return &Store{
		api:         api,
		table:       table,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// NewStoreFromConfig builds the store the server runs with when store.type is dynamodb
func NewStoreFromConfig(client *Client, cfg *config.Configuration, log *logger.Logger) *Store {
	return NewStore(client.DB(), cfg.DynamoDB.TableName, cfg.Invoice.MaxTxAttempts, log)
}

func (s *Store) key(collection, id string) (map[string]ddbtypes.AttributeValue, error) {
	k, err := attributevalue.MarshalMap(itemKey{PK: collection, SK: id})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode document key").
			Mark(ierr.ErrSystem)
	}
	return k, nil
}

func (s *Store) getItem(ctx context.Context, collection, id string) (*item, error) {
	k, err := s.key(collection, id)
	if err != nil {
		return nil, err
	}
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to read %s %s", collection, id).
			Mark(ierr.ErrDatabase)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to decode %s %s", collection, id).
			Mark(ierr.ErrDatabase)
	}
	return &it, nil
}

func (s *Store) Get(ctx context.Context, collection, id string, dst any) error {
	it, err := s.getItem(ctx, collection, id)
	if err != nil {
		return err
	}
	if it == nil {
		return ierr.NewError("document not found").
			WithHintf("%s %s was not found", collection, id).
			WithReportableDetails(map[string]any{
				"collection": collection,
				"id":         id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return docstore.Decode([]byte(it.Doc), dst)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	data, err := docstore.Encode(doc)
	if err != nil {
		return err
	}
	k, err := s.key(collection, id)
	if err != nil {
		return err
	}
	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       k,
		UpdateExpression:          aws.String(setExpression),
		ExpressionAttributeNames:  setNames(),
		ExpressionAttributeValues: setValues(data),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to write %s %s", collection, id).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	k, err := s.key(collection, id)
	if err != nil {
		return err
	}
	_, err = s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       k,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to delete %s %s", collection, id).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Query reads the whole collection partition and evaluates q client side
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	values, err := attributevalue.MarshalMap(map[string]string{":pk": collection})
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	paginator := dynamodb.NewQueryPaginator(s.api, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		ExpressionAttributeNames:  map[string]string{"#pk": attrPK},
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	})

	var snaps []docstore.Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Failed to query %s", collection).
				Mark(ierr.ErrDatabase)
		}
		for _, raw := range page.Items {
			var it item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				s.logger.Warnw("skipping undecodable item", "collection", collection, "error", err)
				continue
			}
			snaps = append(snaps, docstore.Snapshot{ID: it.SK, Version: it.Version, Data: []byte(it.Doc)})
		}
	}
	return q.Apply(snaps), nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	return docstore.RetryOnConflict(ctx, s.maxAttempts, func() error {
		tx := &transaction{store: s, reads: make(map[docstore.Key]int64)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.commit(ctx)
	})
}

func (s *Store) NewBatch() docstore.Batch {
	return &batch{store: s}
}

const setExpression = "SET #doc = :doc ADD #v :one"

func setNames() map[string]string {
	return map[string]string{"#doc": attrDoc, "#v": attrVersion}
}

func setValues(data []byte) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		":doc": &ddbtypes.AttributeValueMemberS{Value: string(data)},
		":one": &ddbtypes.AttributeValueMemberN{Value: "1"},
	}
}

// versionCondition asserts the version a transaction observed; zero means the document
// did not exist
func versionCondition(expected int64, names map[string]string, values map[string]ddbtypes.AttributeValue) string {
	names["#v"] = attrVersion
	if expected == 0 {
		return "attribute_not_exists(#v)"
	}
	values[":expected"] = &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)}
	return "#v = :expected"
}

// buildWrites turns buffered writes and the read set into transact items. When reads is
// nil the writes are unconditional.
func (s *Store) buildWrites(ops []docstore.Op, reads map[docstore.Key]int64) ([]ddbtypes.TransactWriteItem, error) {
	items := make([]ddbtypes.TransactWriteItem, 0, len(ops)+len(reads))
	written := make(map[docstore.Key]bool, len(ops))

	for _, op := range ops {
		k, err := s.key(op.Collection, op.ID)
		if err != nil {
			return nil, err
		}
		written[op.Key()] = true
		expected, checked := reads[op.Key()]

		switch op.Kind {
		case docstore.OpSet:
			names := setNames()
			values := setValues(op.Data)
			update := &ddbtypes.Update{
				TableName:                 aws.String(s.table),
				Key:                       k,
				UpdateExpression:          aws.String(setExpression),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}
			if checked {
				update.ConditionExpression = aws.String(versionCondition(expected, names, values))
			}
			items = append(items, ddbtypes.TransactWriteItem{Update: update})
		case docstore.OpDelete:
			del := &ddbtypes.Delete{
				TableName: aws.String(s.table),
				Key:       k,
			}
			if checked {
				names := map[string]string{}
				values := map[string]ddbtypes.AttributeValue{}
				del.ConditionExpression = aws.String(versionCondition(expected, names, values))
				del.ExpressionAttributeNames = names
				if len(values) > 0 {
					del.ExpressionAttributeValues = values
				}
			}
			items = append(items, ddbtypes.TransactWriteItem{Delete: del})
		}
	}

	for key, expected := range reads {
		if written[key] {
			continue
		}
		k, err := s.key(key.Collection, key.ID)
		if err != nil {
			return nil, err
		}
		names := map[string]string{}
		values := map[string]ddbtypes.AttributeValue{}
		check := &ddbtypes.ConditionCheck{
			TableName:                aws.String(s.table),
			Key:                      k,
			ConditionExpression:      aws.String(versionCondition(expected, names, values)),
			ExpressionAttributeNames: names,
		}
		if len(values) > 0 {
			check.ExpressionAttributeValues = values
		}
		items = append(items, ddbtypes.TransactWriteItem{ConditionCheck: check})
	}
	return items, nil
}

func (s *Store) transactWrite(ctx context.Context, items []ddbtypes.TransactWriteItem) error {
	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}
	if isConflict(err) {
		return ierr.WithError(err).
			WithHint("The record was modified concurrently, please retry").
			Mark(ierr.ErrVersionConflict)
	}
	return ierr.WithError(err).
		WithHint("Failed to commit write").
		Mark(ierr.ErrDatabase)
}

func isConflict(err error) bool {
	var canceled *ddbtypes.TransactionCanceledException
	if ierr.As(err, &canceled) {
		return lo.SomeBy(canceled.CancellationReasons, func(r ddbtypes.CancellationReason) bool {
			code := aws.ToString(r.Code)
			return code == "ConditionalCheckFailed" || code == "TransactionConflict"
		})
	}
	var conflict *ddbtypes.TransactionConflictException
	if ierr.As(err, &conflict) {
		return true
	}
	var condition *ddbtypes.ConditionalCheckFailedException
	return ierr.As(err, &condition)
}

type transaction struct {
	store  *Store
	reads  map[docstore.Key]int64
	writes docstore.Ops
}

func (t *transaction) Get(ctx context.Context, collection, id string, dst any) (bool, error) {
	if op, ok := t.writes.Lookup(collection, id); ok {
		if op.Kind == docstore.OpDelete {
			return false, nil
		}
		return true, docstore.Decode(op.Data, dst)
	}

	it, err := t.store.getItem(ctx, collection, id)
	if err != nil {
		return false, err
	}
	key := docstore.Key{Collection: collection, ID: id}
	if _, seen := t.reads[key]; !seen {
		var version int64
		if it != nil {
			version = it.Version
		}
		t.reads[key] = version
	}
	if it == nil {
		return false, nil
	}
	return true, docstore.Decode([]byte(it.Doc), dst)
}

func (t *transaction) Set(collection, id string, doc any) error {
	return t.writes.Set(collection, id, doc)
}

func (t *transaction) Delete(collection, id string) {
	t.writes.Delete(collection, id)
}

func (t *transaction) commit(ctx context.Context) error {
	items, err := t.store.buildWrites(t.writes.List(), t.reads)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	if len(items) > MaxTransactItems {
		return ierr.NewErrorf("transaction touches %d documents", len(items)).
			WithHintf("A transaction may touch at most %d documents", MaxTransactItems).
			Mark(ierr.ErrInvalidOperation)
	}
	return t.store.transactWrite(ctx, items)
}

// batch commits in chunks of MaxTransactItems. Each chunk is atomic; a failure part way
// leaves earlier chunks applied.
type batch struct {
	store *Store
	ops   docstore.Ops
}

func (b *batch) Set(collection, id string, doc any) error {
	return b.ops.Set(collection, id, doc)
}

func (b *batch) Delete(collection, id string) {
	b.ops.Delete(collection, id)
}

func (b *batch) Len() int {
	return b.ops.Len()
}

func (b *batch) Commit(ctx context.Context) error {
	for i, chunk := range lo.Chunk(b.ops.List(), MaxTransactItems) {
		items, err := b.store.buildWrites(chunk, nil)
		if err != nil {
			return err
		}
		if err := b.store.transactWrite(ctx, items); err != nil {
			b.store.logger.Errorw("batch chunk failed",
				"chunk", i,
				"chunk_size", len(chunk),
				"total", b.ops.Len(),
				"error", err)
			return err
		}
	}
	return nil
}
