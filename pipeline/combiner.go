// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/renderpipe/animations"
	"github.com/gogpu/renderpipe/geom"
	"github.com/gogpu/renderpipe/rendertree"
)

// ConsoleMode selects how a Combiner shows the console tree.
type ConsoleMode int

const (
	// ConsoleOff shows only the main tree.
	ConsoleOff ConsoleMode = iota
	// ConsoleOn draws the console tree over the main tree.
	ConsoleOn
	// ConsoleOnly shows only the console tree.
	ConsoleOnly
)

// String returns the mode name.
func (m ConsoleMode) String() string {
	switch m {
	case ConsoleOff:
		return "off"
	case ConsoleOn:
		return "on"
	case ConsoleOnly:
		return "only"
	default:
		return fmt.Sprintf("ConsoleMode(%d)", int(m))
	}
}

// Submitter accepts submissions. *Pipeline implements it.
type Submitter interface {
	Submit(s Submission) error
}

// Ensure Pipeline implements Submitter.
var _ Submitter = (*Pipeline)(nil)

// Combiner merges a main render tree and a console render tree and submits
// the result whenever either changes.
//
// The main tree's time offset is advanced by the time since it was
// received, so animations keep running while only the console updates.
//
// Combiner is safe for concurrent use.
type Combiner struct {
	mu      sync.Mutex
	out     Submitter
	now     func() time.Time
	mode    ConsoleMode
	main    *Submission
	console *Submission

	mainReceived time.Time
}

// NewCombiner returns a combiner submitting to out. A nil now uses
// time.Now.
func NewCombiner(out Submitter, now func() time.Time) *Combiner {
	if now == nil {
		now = time.Now
	}
	return &Combiner{out: out, now: now}
}

// SetConsoleMode changes the console mode and resubmits.
func (c *Combiner) SetConsoleMode(mode ConsoleMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	return c.submitLocked()
}

// ConsoleMode returns the current console mode.
func (c *Combiner) ConsoleMode() ConsoleMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// UpdateMain replaces the main tree and resubmits.
func (c *Combiner) UpdateMain(s Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.main = &s
	c.mainReceived = c.now()
	return c.submitLocked()
}

// UpdateConsole replaces the console tree and resubmits.
func (c *Combiner) UpdateConsole(s Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.console = &s
	return c.submitLocked()
}

func (c *Combiner) submitLocked() error {
	if c.console != nil && c.mode != ConsoleOff {
		if c.mode == ConsoleOnly {
			return c.out.Submit(*c.console)
		}
		if c.main == nil {
			return nil
		}
		combined := Submission{
			RenderTree:   rendertree.NewCompositionNode(geom.Point{}, c.main.RenderTree, c.console.RenderTree),
			Animations:   animations.Merge(c.main.Animations, c.console.Animations),
			TimeOffset:   c.mainOffset(),
			OnRasterized: c.main.OnRasterized,
		}
		return c.out.Submit(combined)
	}
	if c.main == nil {
		return nil
	}
	s := *c.main
	s.TimeOffset = c.mainOffset()
	return c.out.Submit(s)
}

func (c *Combiner) mainOffset() time.Duration {
	return c.main.TimeOffset + c.now().Sub(c.mainReceived)
}
