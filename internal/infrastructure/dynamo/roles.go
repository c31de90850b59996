package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-gate/internal/domain"
)

// RoleRepo provides typed DynamoDB operations for the user_roles table.
// PK: user_id, SK: role.
type RoleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRoleRepo(client *dynamodb.Client, tableName string) *RoleRepo {
	return &RoleRepo{client: client, tableName: tableName}
}

// Has reports whether the user holds the given role.
func (r *RoleRepo) Has(ctx context.Context, userID, role string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "role", role),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

func (r *RoleRepo) Grant(ctx context.Context, grant *domain.UserRole) error {
	item, err := attributevalue.MarshalMap(grant)
	if err != nil {
		return fmt.Errorf("marshal role grant: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
