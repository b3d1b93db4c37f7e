package mongo_repo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const imageBucketName = "images"

// ImageStore 以 GridFS 存放圖片，檔名即物件路徑
type ImageStore struct {
	bucket    *gridfs.Bucket
	urlPrefix string
}

func NewImageStore(db *mongo.Database, urlPrefix string) (*ImageStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imageBucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &ImageStore{bucket: bucket, urlPrefix: urlPrefix}, nil
}

type imageMetadata struct {
	ContentType string `bson:"contentType"`
}

// Upload 同一路徑重複上傳時先移除舊檔
func (s *ImageStore) Upload(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	if err := s.Delete(ctx, path); err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(imageMetadata{ContentType: contentType})
	if _, err := s.bucket.UploadFromStream(path, r, opts); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return s.urlPrefix + path, nil
}

func (s *ImageStore) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", fmt.Errorf("%w: %s", repository.ErrObjectNotFound, path)
		}
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}

	contentType := "application/octet-stream"
	if file := stream.GetFile(); file != nil && len(file.Metadata) > 0 {
		var meta imageMetadata
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return stream, contentType, nil
}

func (s *ImageStore) Delete(ctx context.Context, path string) error {
	cur, err := s.bucket.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", path, err)
	}
	defer cur.Close(ctx)

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &files); err != nil {
		return fmt.Errorf("failed to decode files of %s: %w", path, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", repository.ErrObjectNotFound, path)
	}

	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return nil
}

var _ repository.IImageStore = (*ImageStore)(nil)
