package awsconfig

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/sports-travel-platform/internal/config"
)

func TestLoadStaticCredentialsAndOverride(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "ap-south-1",
		AWSAccessKeyID:      "test-key",
		AWSSecretAccessKey:  "test-secret",
		AWSEndpointOverride: "http://localhost:4566",
	}
	awsCfg, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-key", creds.AccessKeyID)

	require.NotNil(t, awsCfg.EndpointResolverWithOptions)
	for _, service := range []string{s3.ServiceID, sesv2.ServiceID} {
		ep, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint(service, "ap-south-1")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:4566", ep.URL)
	}
	_, err = awsCfg.EndpointResolverWithOptions.ResolveEndpoint("DynamoDB", "ap-south-1")
	assert.Error(t, err)

	assert.True(t, NewS3Client(awsCfg, cfg).Options().UsePathStyle)
}

func TestLoadWithoutOverride(t *testing.T) {
	cfg := &appconfig.Config{AWSRegion: "ap-south-1", AWSAccessKeyID: "k", AWSSecretAccessKey: "s"}
	awsCfg, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, awsCfg.EndpointResolverWithOptions)
	assert.False(t, NewS3Client(awsCfg, cfg).Options().UsePathStyle)
	assert.NotNil(t, NewSESClient(awsCfg))
}
