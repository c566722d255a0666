// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{src: "mailonfail.yaml", want: false},
		{src: "/etc/mailonfail.yaml", want: false},
		{src: "./conf/mailonfail.yaml", want: false},
		{src: "https://example.com/mailonfail.yaml", want: true},
		{src: "git::https://github.com/org/repo//mailonfail.yaml", want: true},
		{src: "s3::https://s3.amazonaws.com/bucket/mailonfail.yaml", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRemote(tt.src))
		})
	}
}

func TestSplitGetterURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantURL  string
		wantFile string
	}{
		{
			name:     "git sub-path with ref",
			url:      "git::https://github.com/org/repo//ops/mailonfail.yaml?ref=v1.2.0",
			wantURL:  "git::https://github.com/org/repo//ops?ref=v1.2.0",
			wantFile: "mailonfail.yaml",
		},
		{
			name:     "file at repository root",
			url:      "git::https://github.com/org/repo//mailonfail.yaml",
			wantURL:  "git::https://github.com/org/repo",
			wantFile: "mailonfail.yaml",
		},
		{
			name: "plain http file",
			url:  "https://example.com/mailonfail.yaml",
		},
		{
			name: "sub-path naming a directory",
			url:  "git::https://github.com/org/repo//ops/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotFile := splitGetterURL(tt.url)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantFile, gotFile)
		})
	}
}

func TestLoad_RemoteHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mailonfail.yaml" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte(validYAML))
	}))
	t.Cleanup(srv.Close)

	cfg, err := Load(context.Background(), srv.URL+"/mailonfail.yaml")
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
}

func TestLoad_RemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := Load(context.Background(), srv.URL+"/missing.yaml")
	require.ErrorIs(t, err, ErrFetch)
}
