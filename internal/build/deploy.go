package build

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	stErrors "github.com/strata-dev/strata/internal/errors"
)

// s3PutAPI is the slice of the S3 client the deployer uses.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3Client is stubbed in tests.
var newS3Client = func(region string) s3PutAPI {
	return s3.New(s3.Options{Region: region})
}

// deploy uploads the build output directory to the configured S3 bucket.
// Only runs for the static-export target.
func (b *Builder) deploy(ctx context.Context) error {
	client := newS3Client(b.cfg.Deploy.Region)
	outDir := b.cfg.OutputPath()
	prefix := b.cfg.Deploy.Prefix

	return filepath.WalkDir(outDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(filepath.Join(prefix, rel))

		f, err := os.Open(p)
		if err != nil {
			return stErrors.New(stErrors.CodeDeployUpload).WithPath(p).Wrap(err)
		}
		defer f.Close()

		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(b.cfg.Deploy.Bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return stErrors.New(stErrors.CodeDeployUpload).
				WithPath(p).
				WithDetail("uploading to s3://" + b.cfg.Deploy.Bucket + "/" + key).
				Wrap(err)
		}

		b.log.Debug("uploaded", zap.String("key", key))
		return nil
	})
}
