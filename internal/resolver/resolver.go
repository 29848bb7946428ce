package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/elephant-xyz/mvl-monitoring/internal/awsapi"
)

var (
	// ErrStackNotFound is returned when the named stack does not exist
	ErrStackNotFound = errors.New("stack not found")

	// ErrOutputMissing is returned when the stack exists but lacks the output key
	ErrOutputMissing = errors.New("stack output not found")
)

// Resolver looks up the log group name for one account from its
// CloudFormation stack outputs. Resolution happens exactly once per account
// per run; a failure here skips the whole account.
type Resolver struct {
	client    awsapi.CloudFormationAPI
	stackName string
	outputKey string
}

// New creates a resolver for the given stack and output key
func New(client awsapi.CloudFormationAPI, stackName, outputKey string) *Resolver {
	return &Resolver{
		client:    client,
		stackName: stackName,
		outputKey: outputKey,
	}
}

// Resolve returns the log group name published by the stack. No retries;
// the caller decides what a failure means for the account.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	resp, err := r.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(r.stackName),
	})
	if err != nil {
		return "", fmt.Errorf("describe stack %s: %w", r.stackName, err)
	}

	if len(resp.Stacks) == 0 {
		return "", fmt.Errorf("stack %s: %w", r.stackName, ErrStackNotFound)
	}

	for _, out := range resp.Stacks[0].Outputs {
		if aws.ToString(out.OutputKey) == r.outputKey {
			if v := aws.ToString(out.OutputValue); v != "" {
				return v, nil
			}
			break
		}
	}

	return "", fmt.Errorf("output %s in stack %s: %w", r.outputKey, r.stackName, ErrOutputMissing)
}
