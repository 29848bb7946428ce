package awsapi

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// CloudFormationAPI is the slice of the CloudFormation client used by the
// stack-output resolver
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// LogsAPI is the slice of the CloudWatch Logs client used by query jobs
type LogsAPI interface {
	StartQuery(ctx context.Context, params *cloudwatchlogs.StartQueryInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error)
	GetQueryResults(ctx context.Context, params *cloudwatchlogs.GetQueryResultsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error)
}

// Clients bundles the per-account service clients
type Clients struct {
	CloudFormation CloudFormationAPI
	Logs           LogsAPI
}

// NewClients builds service clients scoped to one account's static key pair.
// Each account gets its own clients; credentials are never shared across
// accounts.
func NewClients(ctx context.Context, acct types.Account, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(acct.AccessKeyID, acct.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for account %s: %w", acct.AccountID, err)
	}

	return &Clients{
		CloudFormation: cloudformation.NewFromConfig(cfg),
		Logs:           cloudwatchlogs.NewFromConfig(cfg),
	}, nil
}
