package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	appconfig "chwadmin/internal/config"
	"chwadmin/internal/models"
	"chwadmin/internal/utils/logger"
)

// Ensure S3Service implements FileURLGenerator
var _ models.FileURLGenerator = (*S3Service)(nil)

// S3Service stores uploaded images and published books in S3 or an
// S3-compatible store (R2, MinIO).
type S3Service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	endpoint   string
	region     string
	publicACL  bool
	logger     *logger.Logger
}

func NewS3Service(ctx context.Context, cfg appconfig.StorageConfig) (*S3Service, error) {
	log := logger.New("s3_service")
	sc := cfg.S3

	if sc.AccessKey == "" || sc.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty", fmt.Errorf("accessKey or secretKey is empty"))
	}
	if sc.BucketName == "" {
		return nil, log.Error("S3 bucket is not configured", fmt.Errorf("S3_BUCKET_NAME is empty"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(sc.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			sc.AccessKey,
			sc.SecretKey,
			"", // Session token (not needed for basic auth)
		)),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			o.UsePathStyle = true
		}
	})

	// Verify credentials and bucket access
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(sc.BucketName)}); err != nil {
		return nil, log.Error("Failed to verify S3 bucket %s", err, sc.BucketName)
	}

	log.Success("S3 service initialized for bucket %s", sc.BucketName)

	return &S3Service{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: sc.BucketName,
		endpoint:   sc.Endpoint,
		region:     sc.Region,
		publicACL:  cfg.Provider == "r2",
		logger:     log,
	}, nil
}

// ObjectKey builds a collision free key under prefix keeping the file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.New().String()+ext)
}

// URL returns the public URL of key.
func (s *S3Service) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

// Put writes body at key and returns its URL.
func (s *S3Service) Put(ctx context.Context, key string, body []byte, acl types.ObjectCannedACL, contentType string) (string, error) {
	if s.publicACL {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         acl,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload %s", err, key)
	}

	url := s.URL(key)
	s.logger.Success("Stored %s (%d bytes)", key, len(body))
	return url, nil
}

// UploadFile stores an uploaded file under uploads/ and returns its key and URL.
func (s *S3Service) UploadFile(ctx context.Context, file []byte, filename string, acl types.ObjectCannedACL, contentType string) (string, string, error) {
	key := ObjectKey("uploads", filename)
	url, err := s.Put(ctx, key, file, acl, contentType)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// GetSignedURL implements FileURLGenerator interface
func (s *S3Service) GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL for %s", err, key)
	}
	return presigned.URL, nil
}
