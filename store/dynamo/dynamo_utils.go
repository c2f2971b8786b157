package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/store"
)

// dynamoAPI is the subset of *dynamodb.Client the store uses.
type dynamoAPI interface {
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

func newDynamoDBClient(ctx context.Context, devMode bool, dynamodbEndpoint string) (*dynamodb.Client, error) {
	var cfg aws.Config
	var err error

	if devMode {
		// Load config with dummy credentials and region for local/dev
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if dynamodbEndpoint != "" {
			o.BaseEndpoint = aws.String(dynamodbEndpoint)
		}
	}), nil
}

func getTables(client dynamoAPI, ctx context.Context) ([]string, error) {
	var tables []string
	input := &dynamodb.ListTablesInput{}
	for {
		output, err := client.ListTables(ctx, input)
		if err != nil {
			return nil, err
		}
		tables = append(tables, output.TableNames...)
		if output.LastEvaluatedTableName == nil {
			return tables, nil
		}
		input.ExclusiveStartTableName = output.LastEvaluatedTableName
	}
}

func keyOf(pk string, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// getItem retrieves an item of type T from DynamoDB by PK and SK
func getItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, pk string, sk string, consistentRead bool) (T, error) {
	var zero T

	resp, err := dynamoStore.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(dynamoStore.tableName),
		Key:            keyOf(pk, sk),
		ConsistentRead: aws.Bool(consistentRead),
	})
	if err != nil {
		return zero, fmt.Errorf("GetItem failed: %w", err)
	}
	if resp.Item == nil {
		return zero, store.ErrItemNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(resp.Item, &item); err != nil {
		return zero, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return item, nil
}

// putNewItem inserts item only if no item with the same PK+SK exists.
// Returns store.ErrItemExists otherwise.
func putNewItem[T any](dynamoStore *DynamoNotesStore, ctx context.Context, item T) error {
	avMap, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, ok := avMap["PK"]; !ok {
		return errors.New("struct missing PK field")
	}
	if _, ok := avMap["SK"]; !ok {
		return errors.New("struct missing SK field")
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Item:                avMap,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemExists
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// listFilter builds the FilterExpression for a note listing. Returns an
// empty expression when the filter has no conditions.
func listFilter(filter models.NoteFilter) (string, map[string]string, map[string]types.AttributeValue) {
	var conds []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if filter.Pinned != nil {
		conds = append(conds, "#Pinned = :pinned")
		names["#Pinned"] = "Pinned"
		values[":pinned"] = &types.AttributeValueMemberBOOL{Value: *filter.Pinned}
	}
	if filter.Archived != nil {
		conds = append(conds, "#Archived = :archived")
		names["#Archived"] = "Archived"
		values[":archived"] = &types.AttributeValueMemberBOOL{Value: *filter.Archived}
	}
	if filter.Label != "" {
		conds = append(conds, "contains(#Labels, :label)")
		names["#Labels"] = "Labels"
		values[":label"] = &types.AttributeValueMemberS{Value: filter.Label}
	}
	if filter.Query != "" {
		// Title and content are matched separately, never their concatenation
		conds = append(conds, "(contains(#TitleLower, :q) OR contains(#ContentLower, :q))")
		names["#TitleLower"] = "TitleLower"
		names["#ContentLower"] = "ContentLower"
		values[":q"] = &types.AttributeValueMemberS{Value: strings.ToLower(filter.Query)}
	}

	return strings.Join(conds, " AND "), names, values
}

// queryAllByPK returns all items of type T under pk whose SK starts with
// skPrefix and that satisfy the optional filter expression.
func queryAllByPK[T any](
	dynamoStore *DynamoNotesStore,
	ctx context.Context,
	pk string,
	skPrefix string,
	filterExpr string,
	filterNames map[string]string,
	filterValues map[string]types.AttributeValue,
) ([]T, error) {
	var results []T

	exprAttrNames := map[string]string{
		"#pk": "PK",
		"#sk": "SK",
	}
	exprAttrValues := map[string]types.AttributeValue{
		":pk":       &types.AttributeValueMemberS{Value: pk},
		":skPrefix": &types.AttributeValueMemberS{Value: skPrefix},
	}
	for k, v := range filterNames {
		exprAttrNames[k] = v
	}
	for k, v := range filterValues {
		exprAttrValues[k] = v
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(dynamoStore.tableName),
		KeyConditionExpression:    aws.String("#pk = :pk AND begins_with(#sk, :skPrefix)"),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
	}
	if filterExpr != "" {
		input.FilterExpression = aws.String(filterExpr)
	}

	paginator := dynamodb.NewQueryPaginator(dynamoStore.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		var pageItems []T
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page items: %w", err)
		}

		results = append(results, pageItems...)
	}

	return results, nil
}

// updateFields sets the given attributes on an existing item and returns the
// new item. Returns store.ErrItemNotFound if the item does not exist.
func updateFields[T any](
	dynamoStore *DynamoNotesStore,
	ctx context.Context,
	pk string,
	sk string,
	fields map[string]types.AttributeValue,
) (T, error) {
	var zero T

	if len(fields) == 0 {
		return zero, errors.New("no fields to update")
	}

	// Deterministic expression order keeps requests reproducible
	names := make([]string, 0, len(fields))
	for field := range fields {
		if field == "PK" || field == "SK" {
			continue
		}
		names = append(names, field)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	exprAttrNames := make(map[string]string, len(names))
	exprAttrValues := make(map[string]types.AttributeValue, len(names))
	for _, field := range names {
		sets = append(sets, fmt.Sprintf("#%s = :%s", field, field))
		exprAttrNames["#"+field] = field
		exprAttrValues[":"+field] = fields[field]
	}

	out, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dynamoStore.tableName),
		Key:                       keyOf(pk, sk),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return zero, store.ErrItemNotFound
		}
		return zero, fmt.Errorf("update failed: %w", err)
	}

	var updated T
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return zero, fmt.Errorf("failed to unmarshal updated item: %w", err)
	}

	return updated, nil
}

// deleteExistingItem deletes an item by PK and SK.
// Returns store.ErrItemNotFound if there was nothing to delete.
func deleteExistingItem(dynamoStore *DynamoNotesStore, ctx context.Context, pk string, sk string) error {
	_, err := dynamoStore.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(dynamoStore.tableName),
		Key:                 keyOf(pk, sk),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return store.ErrItemNotFound
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	return nil
}
