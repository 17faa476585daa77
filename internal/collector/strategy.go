/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package collector

import (
	"context"
	"log/slog"
)

// SourceNone marks a value no strategy could produce.
const SourceNone = "none"

// Result is the outcome of a fallback chain: either a value together with the
// strategy that produced it, or nothing.
type Result[T any] struct {
	Value  T
	Source string
	Found  bool
}

// Found wraps a value produced by source.
func Found[T any](source string, v T) Result[T] {
	return Result[T]{Value: v, Source: source, Found: true}
}

// NotFound is the empty result.
func NotFound[T any]() Result[T] {
	return Result[T]{Source: SourceNone}
}

// Ptr returns a pointer to the value, or nil when nothing was found.
func (r Result[T]) Ptr() *T {
	if !r.Found {
		return nil
	}
	v := r.Value
	return &v
}

// Strategy is one step of a fallback chain.
// Try reports a missing value with an error; the error is only logged.
type Strategy[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, error)
}

// FirstOf evaluates strategies in order and returns the first value found.
func FirstOf[T any](ctx context.Context, logger *slog.Logger, field string, strategies ...Strategy[T]) Result[T] {
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			logger.Debug("Probe cancelled", "field", field, "error", err)
			break
		}
		v, err := s.Try(ctx)
		if err != nil {
			logger.Debug("Probe strategy missed", "field", field, "source", s.Name, "error", err)
			continue
		}
		return Found(s.Name, v)
	}
	return NotFound[T]()
}
