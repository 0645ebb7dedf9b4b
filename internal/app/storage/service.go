/*
Package storage issues presigned URLs for attachment upload and download.
Attachment bytes never pass through this server; clients talk to the object
store directly and messages carry only the object key.
*/
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"teamchat/internal/configs"
	"teamchat/internal/pkg/errs"
	"teamchat/internal/pkg/randx"
)

const (
	maxFileBytes  = 20 << 20
	presignExpiry = 15 * time.Minute
	uploadPrefix  = "uploads/"
)

// allowedFileTypes maps the accepted content types to their canonical
// extension. Everything else is rejected before a URL is signed.
var allowedFileTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"image/webp":         ".webp",
	"application/pdf":    ".pdf",
	"text/plain":         ".txt",
	"application/zip":    ".zip",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
}

// Service signs upload and download URLs against the configured bucket and
// removes orphaned attachment objects.
type Service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    zerolog.Logger
}

func NewService(ctx context.Context, cfg configs.AppConfig, logger zerolog.Logger) (*Service, error) {
	if !cfg.S3Configured() {
		return nil, fmt.Errorf("object store not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Service{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.S3BucketName,
		logger:    logger.With().Str("component", "storage").Logger(),
	}, nil
}

// UploadTicket is one signed upload grant.
type UploadTicket struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresignUpload validates the declared type and size and signs a PUT URL
// for a fresh object key.
func (s *Service) PresignUpload(ctx context.Context, fileName, fileType string, fileSize int64) (UploadTicket, *errs.CustomError) {
	if _, ok := allowedFileTypes[fileType]; !ok {
		return UploadTicket{}, errs.NewError(errs.ErrFileTypeInvalid)
	}
	if fileSize <= 0 || fileSize > maxFileBytes {
		return UploadTicket{}, errs.NewError(errs.ErrFileSizeTooLarge)
	}

	key := uploadPrefix + randx.FileID() + "/" + sanitizeFileName(fileName)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(fileType),
		ContentLength: aws.Int64(fileSize),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("presign upload")
		return UploadTicket{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	return UploadTicket{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

// PresignDownload signs a GET URL for an existing attachment key.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, *errs.CustomError) {
	if !validKey(key) {
		return "", errs.NewError(errs.ErrAttachmentKeyInvalid)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("presign download")
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}
	return req.URL, nil
}

// DeleteObject removes an attachment object. Used after its message row is
// gone; failures leave an orphan, which is acceptable.
func (s *Service) DeleteObject(ctx context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("delete object: invalid key %q", key)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// validKey accepts only keys this service could have issued.
func validKey(key string) bool {
	if !strings.HasPrefix(key, uploadPrefix) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "//") {
		return false
	}
	rest := strings.TrimPrefix(key, uploadPrefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return false
	}
	return randx.IsValidIdentifier(parts[0])
}

func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
