// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the notification settings from a YAML file.
//
// Every field is mandatory. Values from the file can be overridden by
// MAILONFAIL_ prefixed environment variables (MAILONFAIL_PASSWORD and so on),
// which are applied before validation.
//
// The file is read from the local filesystem, or fetched with go-getter when
// its location is a URL such as
// git::https://github.com/org/ops//mailonfail.yaml?ref=v1.
package config
