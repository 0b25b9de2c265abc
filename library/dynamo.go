package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/model"
)

// item is one fragment as stored in DynamoDB. PK groups fragments by style
// and root profile; SK keeps equivalent fragments out.
type item struct {
	PK       string          `dynamodbav:"PK"`
	SK       string          `dynamodbav:"SK"`
	Fragment *model.Fragment `dynamodbav:"Fragment"`
}

func partitionKey(style model.Style, profile string) string {
	return string(style) + "#" + profile
}

// DynamoStore publishes fragments to a DynamoDB table so several servers can
// share one library.
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewDynamoStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// DialDynamo connects to endpoint, which may be a local DynamoDB.
func DialDynamo(endpoint, region, table string) (*DynamoStore, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create DynamoDB session: %w", err)
	}
	return NewDynamoStore(dynamodb.New(sess), table), nil
}

// Put stores f. It returns false when an equivalent fragment is already in
// the table.
func (d *DynamoStore) Put(ctx context.Context, f *model.Fragment) (bool, error) {
	av, err := dynamodbattribute.MarshalMap(item{
		PK:       partitionKey(f.Style, chord.RootProfile(f.Home)),
		SK:       EquivalenceKey(f),
		Fragment: f,
	})
	if err != nil {
		return false, fmt.Errorf("marshal fragment %s: %w", f.ID, err)
	}

	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("put fragment %s: %w", f.ID, err)
	}
	return true, nil
}

// LoadInto copies the whole table into s and reports how many fragments
// were new to it.
func (d *DynamoStore) LoadInto(ctx context.Context, s *MemoryStore) (int, error) {
	added := 0
	var uerr error
	err := d.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	}, func(out *dynamodb.ScanOutput, last bool) bool {
		var frags []*model.Fragment
		frags, uerr = appendItems(nil, out.Items)
		for _, f := range frags {
			if s.Add(f) {
				added++
			}
		}
		return uerr == nil
	})
	if err == nil {
		err = uerr
	}
	if err != nil {
		return added, fmt.Errorf("scan %s: %w", d.table, err)
	}
	return added, nil
}

func appendItems(res []*model.Fragment, items []map[string]*dynamodb.AttributeValue) ([]*model.Fragment, error) {
	for _, av := range items {
		var it item
		if err := dynamodbattribute.UnmarshalMap(av, &it); err != nil {
			return res, err
		}
		if it.Fragment != nil {
			res = append(res, it.Fragment)
		}
	}
	return res, nil
}
