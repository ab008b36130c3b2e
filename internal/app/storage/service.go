/*
Package storage resolves externally sourced card sets from S3-compatible object
storage.

Card-set ids that are zero or negative reference sets this server does not own;
their content is published as JSON documents in a bucket, keyed by the external id.
*/
package storage

import "context"

// ExternalCardSet is the JSON document shape of an externally sourced card set.
type ExternalCardSet struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BlackCards  []string `json:"blackCards"`
	WhiteCards  []string `json:"whiteCards"`
}

// ServiceConfig holds the settings required to reach the bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// CardSetResolver fetches externally sourced card sets.
type CardSetResolver interface {
	// FetchCardSet resolves the set published under the given external
	// (non-positive) id.
	FetchCardSet(ctx context.Context, externalID int) (*ExternalCardSet, error)
}

// NewCardSetResolver builds a resolver for the configured bucket.
func NewCardSetResolver(cfg ServiceConfig) (CardSetResolver, error) {
	return newS3Resolver(cfg)
}
