package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
)

// R2Provider keeps images in a Cloudflare R2 bucket through the S3 API.
type R2Provider struct {
	client *s3.Client
	bucket string
}

func NewR2Provider() (*R2Provider, error) {
	accessKey := config.CfAccessKey
	secretKey := config.CfSecretKey
	bucketName := config.CfBucketName
	endpoint := config.CfEndpoint

	if accessKey == "" || secretKey == "" || bucketName == "" || endpoint == "" {
		return nil, fmt.Errorf("R2 configuration is incomplete")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
			}, nil
		}))),
		awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %v", err)
	}

	// Path-style avoids virtual-host subdomain TLS problems on R2.
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	logger.SysLog(fmt.Sprintf("R2 image storage enabled, bucket %s", bucketName))
	return &R2Provider{client: client, bucket: bucketName}, nil
}

func (p *R2Provider) Save(ctx context.Context, id string, data []byte, mimeType string) (string, error) {
	key := objectKey(id, mimeType)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %v", err)
	}

	var resultUrl string
	if config.CfPublicUrl != "" {
		resultUrl = fmt.Sprintf("%s/%s", config.CfPublicUrl, key)
	} else {
		resultUrl = fmt.Sprintf("%s/%s/%s", config.CfEndpoint, p.bucket, key)
	}
	logger.SysLog(fmt.Sprintf("image uploaded to R2: %s (size: %d bytes)", resultUrl, len(data)))
	return resultUrl, nil
}

func (p *R2Provider) Load(ctx context.Context, id string) ([]byte, string, error) {
	for _, ext := range knownExtensions {
		key := objectKey(id, mimeTypeFromExtension(ext))
		out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if strings.Contains(err.Error(), "NoSuchKey") {
				continue
			}
			return nil, "", err
		}
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, "", err
		}
		return data, mimeTypeFromExtension(ext), nil
	}
	return nil, "", fmt.Errorf("object not found for id %s", id)
}
