// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import "errors"

var (
	// ErrNotInitialized is returned by Scan before a device is ready.
	ErrNotInitialized = errors.New("gpu: backend not initialized")

	// ErrNoVulkan is returned when the Vulkan HAL backend is not compiled in.
	ErrNoVulkan = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when no GPU adapter is found.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrTooLarge is returned by Scan for face sizes the device cannot bind.
	ErrTooLarge = errors.New("gpu: face size exceeds storage binding limit")

	// ErrTimeout is returned when the GPU does not finish within the timeout.
	ErrTimeout = errors.New("gpu: timed out waiting for GPU")

	// ErrProviderNotHAL is returned when a device provider does not expose
	// hal.Device and hal.Queue.
	ErrProviderNotHAL = errors.New("gpu: provider does not expose HAL types")
)
