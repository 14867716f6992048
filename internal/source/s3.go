package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultS3Region = "us-east-1"

func (o *Opener) newS3Client(ctx context.Context) (*s3.Client, error) {
	region := o.opts.S3Region
	if region == "" {
		region = defaultS3Region
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if o.opts.S3AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.opts.S3AccessKeyID,
			o.opts.S3SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := o.opts.S3Endpoint
	return s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
		if endpoint == "" {
			return
		}
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		// Path-style addressing for MinIO and other compatible stores.
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}), nil
}

func (o *Opener) openS3Object(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := o.newS3Client(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, nil
}
