package s3repo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/config"
	"voice_relay/entity"
)

const traceName = "S3-Repo"

type S3Repository struct {
	sess *s3.Client
}

var _ entity.StorageRepository = (*S3Repository)(nil)

// NewS3Repository builds a client from static keys when they are configured,
// otherwise from the default AWS credential chain. A custom endpoint switches
// to path-style addressing for MinIO and similar servers.
func NewS3Repository(ctx context.Context, cfg config.S3) (*S3Repository, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})
	return &S3Repository{s3Client}, nil
}

func loadAWSConfig(ctx context.Context, cfg config.S3) (aws.Config, error) {
	var resolver aws.EndpointResolverWithOptions
	if cfg.Endpoint != "" {
		resolver = aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:       "aws",
				SigningRegion:     cfg.Region,
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		})
	}

	if cfg.AccessKey != "" {
		return aws.Config{
			Region:                      cfg.Region,
			EndpointResolverWithOptions: resolver,
			Credentials:                 credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if resolver != nil {
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "load default aws config")
	}
	return awsCfg, nil
}

func (s3Repo *S3Repository) UploadObject(ctx context.Context, obj entity.UploadObject) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "UploadObject")
	defer span.End()
	span.SetAttributes(attribute.String("bucket", obj.Bucket), attribute.String("key", obj.Key))

	uploader := manager.NewUploader(s3Repo.sess)

	input := &s3.PutObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return errors.Wrapf(err, "upload s3://%s/%s", obj.Bucket, obj.Key)
	}

	return nil
}
