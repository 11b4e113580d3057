// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob stores uploaded image bytes and hands back the public reference
recorded on the Image row.

The filesystem store writes under a root directory that the API serves under
a base URL (see BLOB_ROOT and BLOB_BASE_URL).
*/
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore keeps blobs as flat files under root.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore creates root if needed and returns a store publishing under baseURL.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: failed to create root %s: %w", root, err)
	}
	return &FileStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory served under the base URL.
func (store *FileStore) Root() string {
	return store.root
}

// Ping fails when the root is gone or is no longer a directory.
func (store *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(store.root)
	if err != nil {
		return fmt.Errorf("blob: root unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob: root %s is not a directory", store.root)
	}
	return nil
}

/*
Put writes data under name and returns its public reference.

The file is written to a temporary sibling and renamed into place, so readers
never observe a partial image.

Parameters:
  - ctx: context.Context
  - name: string (flat file name, e.g. "0190f5a4c0de.jpg")
  - data: []byte

Returns:
  - string: The public reference ("{baseURL}/{name}")
  - error: Invalid names or filesystem failures
*/
func (store *FileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("blob: invalid name %q", name)
	}

	temp, err := os.CreateTemp(store.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob: failed to create temp file: %w", err)
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		return "", fmt.Errorf("blob: failed to write %s: %w", name, err)
	}
	if err := temp.Close(); err != nil {
		return "", fmt.Errorf("blob: failed to close %s: %w", name, err)
	}

	if err := os.Rename(temp.Name(), filepath.Join(store.root, name)); err != nil {
		return "", fmt.Errorf("blob: failed to publish %s: %w", name, err)
	}

	return store.baseURL + "/" + name, nil
}

/*
Delete removes the blob behind ref.

References this store did not produce (external URLs) are ignored, as are
blobs that are already gone.
*/
func (store *FileStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, owned := strings.CutPrefix(ref, store.baseURL+"/")
	if !owned || name == "" || name != path.Base(name) {
		return nil
	}

	err := os.Remove(filepath.Join(store.root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: failed to delete %s: %w", name, err)
	}

	return nil
}
