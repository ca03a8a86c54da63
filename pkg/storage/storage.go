// Package storage persists opaque blobs (run artifacts) in Azure Blob Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/forge/pkg/lifecycle"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey indicates an empty key or one containing a path traversal segment.
	ErrInvalidKey = errors.New("invalid storage key")
)

// System stores and retrieves blobs by key.
type System interface {
	// Start registers a startup hook that ensures the container exists.
	Start(lc *lifecycle.Coordinator) error
	// Put writes data to the blob at key, replacing any existing blob.
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
	// Get returns a stream for the blob at key. The caller must close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error
}

type azure struct {
	client    *azblob.Client
	container string
	prefix    string
	logger    *slog.Logger
}

// New creates a storage system from cfg. The client is created eagerly to
// validate the connection string; no request is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() error {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return fmt.Errorf("create container %s: %w", a.container, err)
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	name, err := a.blobName(key)
	if err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, name, data, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}

	return nil
}

func (a *azure) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	name, err := a.blobName(key)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", name, err)
	}

	return resp.Body, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	name, err := a.blobName(key)
	if err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", name, err)
	}

	return nil
}

func (a *azure) blobName(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if a.prefix == "" {
		return key, nil
	}
	return path.Join(a.prefix, key), nil
}

// ValidateKey rejects empty keys and keys containing "..".
func ValidateKey(key string) error {
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
