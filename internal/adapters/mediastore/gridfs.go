package mediastore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"property_listing/internal/domain"
)

// GridFS keeps uploads in a MongoDB GridFS bucket, one file per key.
type GridFS struct {
	client  *mongo.Client
	db      *mongo.Database
	baseURL string
}

func NewGridFS(ctx context.Context, uri, database, baseURL string) (*GridFS, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &GridFS{client: client, db: client.Database(database), baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (g *GridFS) Close(ctx context.Context) error { return g.client.Disconnect(ctx) }

type fileMeta struct {
	ContentType string `bson:"contentType"`
}

type fileDoc struct {
	ID       any      `bson:"_id"`
	Metadata fileMeta `bson:"metadata"`
}

func (g *GridFS) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := b.UploadFromStream(k, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", k, err)
	}
	return publicURL(g.baseURL, k), nil
}

func (g *GridFS) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, "", err
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return nil, "", err
	}
	doc, err := find(ctx, b, k)
	if err != nil {
		return nil, "", err
	}
	ds, err := b.OpenDownloadStream(doc.ID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", domain.NotFoundf("media %s", k)
	}
	if err != nil {
		return nil, "", err
	}
	ct := doc.Metadata.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ds, ct, nil
}

func (g *GridFS) Delete(ctx context.Context, url string) error {
	k, err := keyFromURL(g.baseURL, url)
	if err != nil {
		return err
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return err
	}
	doc, err := find(ctx, b, k)
	if err != nil {
		return err
	}
	if err := b.Delete(doc.ID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.NotFoundf("image %s", url)
		}
		return err
	}
	return nil
}

// bucket opens the media bucket with ctx's deadline. Buckets take no context and
// hold deadlines as state, so each call gets its own.
func (g *GridFS) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(g.db, options.GridFSBucket().SetName("media"))
	if err != nil {
		return nil, err
	}
	if d, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(d)
		_ = b.SetWriteDeadline(d)
	}
	return b, nil
}

// find returns the newest file stored under key.
func find(ctx context.Context, b *gridfs.Bucket, key string) (fileDoc, error) {
	opts := options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}}).SetLimit(1)
	cur, err := b.Find(bson.D{{Key: "filename", Value: key}}, opts)
	if err != nil {
		return fileDoc{}, err
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return fileDoc{}, err
		}
		return fileDoc{}, domain.NotFoundf("media %s", key)
	}
	var doc fileDoc
	if err := cur.Decode(&doc); err != nil {
		return fileDoc{}, err
	}
	return doc, nil
}
