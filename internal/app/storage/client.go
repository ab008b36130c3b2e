package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cardparty/internal/pkg/logx"
)

// s3Resolver implements CardSetResolver against S3-compatible storage.
type s3Resolver struct {
	cfg        ServiceConfig
	client     *s3.Client
	downloader *manager.Downloader
}

// newS3Resolver initializes the S3 client with a custom endpoint, supporting
// S3-compatible providers.
func newS3Resolver(cfg ServiceConfig) (*s3Resolver, error) {
	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize object storage client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Resolver{
		cfg:        cfg,
		client:     client,
		downloader: manager.NewDownloader(client),
	}, nil
}

// objectKey maps an external card-set id to its bucket key. External ids are
// non-positive; the key uses the absolute value.
func objectKey(externalID int) string {
	return fmt.Sprintf("cardsets/%d.json", -externalID)
}

// FetchCardSet downloads and decodes the card-set document for the given id.
func (r *s3Resolver) FetchCardSet(ctx context.Context, externalID int) (*ExternalCardSet, error) {
	if externalID > 0 {
		return nil, fmt.Errorf("card set id %d is local, not externally sourced", externalID)
	}

	key := objectKey(externalID)
	buf := manager.NewWriteAtBuffer(nil)

	_, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: &r.cfg.S3BucketName,
		Key:    &key,
	})
	if err != nil {
		logx.Error(err, "Failed to download external card set", "key", key)
		return nil, fmt.Errorf("failed to fetch external card set %d", externalID)
	}

	var set ExternalCardSet
	if err := json.Unmarshal(buf.Bytes(), &set); err != nil {
		logx.Error(err, "External card set document is malformed", "key", key)
		return nil, fmt.Errorf("external card set %d is malformed", externalID)
	}

	return &set, nil
}
