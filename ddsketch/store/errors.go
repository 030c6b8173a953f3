// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2026 axiomstream, Inc.

package store

import "errors"

var errEmptyStore = errors.New("store is empty")
