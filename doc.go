// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tilebench measures how loop structure and memory-access order
// affect dense double-precision matrix multiplication.
//
// It provides a family of n×n row-major kernels computing the same
// product C = A*B:
//   - MultiplyNaive, the i→j→k reference whose output defines correctness
//   - MultiplyUnrolled, the same loop with the inner k loop unrolled by four
//   - MultiplyBlocked, which visits the iteration space in step³ tiles
//   - RecursiveGEMM, which halves the problem until it fits a tile
//
// A Driver verifies every kernel against the naive result under an
// absolute tolerance before timing any of them, then reports the cost of
// one multiplication per kernel. CacheProbe times sequential against
// cache-line-strided sweeps of buffers sized for each cache level.
package tilebench
