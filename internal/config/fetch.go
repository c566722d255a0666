// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrFetch is returned when a remote configuration source cannot be retrieved.
var ErrFetch = errors.New("failed to fetch configuration")

const (
	getterForcedSeparator = "::"
	getterSchemeSeparator = "://"
	getterPathSeparator   = "//"
	getterRefSeparator    = "?"
	minimumGetterParts    = 3 // scheme, host and sub-path
)

// IsRemote reports whether src must be retrieved with go-getter rather than
// read from the local filesystem.
func IsRemote(src string) bool {
	return strings.Contains(src, getterForcedSeparator) || strings.Contains(src, getterSchemeSeparator)
}

// read returns the raw bytes behind src, a local path or a go-getter URL.
func read(ctx context.Context, src string) ([]byte, error) {
	if !IsRemote(src) {
		data, err := afero.ReadFile(FsFactory(), src)
		if err != nil {
			return nil, errors.Join(ErrReadFile, err)
		}

		return data, nil
	}

	return fetch(ctx, src)
}

// fetch downloads src into a temporary directory and returns the file's content.
// URLs carrying a sub-path ("repo//dir/file.yaml") are fetched as a directory,
// everything else as a single file.
func fetch(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "mailonfail-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "config"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	target := req.Dst

	// https://github.com/hashicorp/go-getter/issues/98
	if dirURL, fileName := splitGetterURL(src); dirURL != "" {
		req.Src = dirURL
		req.GetMode = getter.ModeDir
		target = filepath.Join(req.Dst, fileName)
	}

	ctxlog.Debug(ctx, "fetching configuration", "src", req.Src, "mode", req.GetMode)

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	if req.GetMode == getter.ModeDir {
		target = filepath.Join(res.Dst, filepath.Base(target))
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, errors.Join(ErrFetch, fmt.Errorf("reading %s: %w", filepath.Base(target), err))
	}

	return data, nil
}

// splitGetterURL separates the file name from a go-getter URL with a sub-path.
// It returns the directory URL, with any query moved back to its end, and the
// file name. Both are empty if url has no sub-path naming a file.
func splitGetterURL(url string) (string, string) {
	var ref string

	_, rest, forced := strings.Cut(url, getterForcedSeparator)
	if !forced {
		rest = url
	}

	parts := strings.Split(rest, getterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	prefix := strings.TrimSuffix(url, rest)
	last := parts[len(parts)-1]

	if before, after, ok := strings.Cut(last, getterRefSeparator); ok {
		ref = after
		last = before
	}

	if last == "" || strings.HasSuffix(last, "/") {
		return "", ""
	}

	fileName := path.Base(last)
	dir := path.Dir(last)

	if dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	dirURL := prefix + strings.Join(parts, getterPathSeparator)

	if ref != "" {
		dirURL += getterRefSeparator + ref
	}

	return dirURL, fileName
}
