// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"sync"
	"time"

	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testTree() rendertree.Node {
	return rendertree.NewSolidRectNode(geom.RectXYWH(0, 0, 4, 4), rendertree.White)
}

func at(ms int) Submission {
	return NewSubmission(testTree(), time.Duration(ms)*time.Millisecond)
}
