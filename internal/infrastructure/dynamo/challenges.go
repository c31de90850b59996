package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-gate/internal/domain"
)

// PendingAuthRepo stores in-flight authentication challenges.
// PK: token, TTL on expires_at.
type PendingAuthRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPendingAuthRepo(client *dynamodb.Client, tableName string) *PendingAuthRepo {
	return &PendingAuthRepo{client: client, tableName: tableName}
}

func (r *PendingAuthRepo) Put(ctx context.Context, p *domain.PendingAuth) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending auth: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PendingAuthRepo) Get(ctx context.Context, token string) (*domain.PendingAuth, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending auth not found: %w", domain.ErrNotFound)
	}
	var p domain.PendingAuth
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PendingAuthRepo) Delete(ctx context.Context, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	return err
}
