package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-gate/internal/domain"
)

// BanRepo provides set-membership reads and admin writes over the two ban
// list tables. PK banned_ips: ip_address, PK banned_emails: email.
type BanRepo struct {
	client      *dynamodb.Client
	ipsTable    string
	emailsTable string
}

func NewBanRepo(client *dynamodb.Client, ipsTable, emailsTable string) *BanRepo {
	return &BanRepo{client: client, ipsTable: ipsTable, emailsTable: emailsTable}
}

func (r *BanRepo) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	return r.exists(ctx, r.ipsTable, "ip_address", ip)
}

func (r *BanRepo) IsEmailBanned(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, r.emailsTable, "email", email)
}

func (r *BanRepo) PutIP(ctx context.Context, ban *domain.BannedIP) error {
	item, err := attributevalue.MarshalMap(ban)
	if err != nil {
		return fmt.Errorf("marshal ip ban: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.ipsTable),
		Item:      item,
	})
	return err
}

func (r *BanRepo) DeleteIP(ctx context.Context, ip string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.ipsTable),
		Key:       strKey("ip_address", ip),
	})
	return err
}

func (r *BanRepo) PutEmail(ctx context.Context, ban *domain.BannedEmail) error {
	item, err := attributevalue.MarshalMap(ban)
	if err != nil {
		return fmt.Errorf("marshal email ban: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.emailsTable),
		Item:      item,
	})
	return err
}

func (r *BanRepo) DeleteEmail(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.emailsTable),
		Key:       strKey("email", email),
	})
	return err
}

func (r *BanRepo) exists(ctx context.Context, table, keyName, value string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       strKey(keyName, value),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}
