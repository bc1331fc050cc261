/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/srediag/plugin-shmem/api"
	"github.com/srediag/plugin-shmem/pkg/shm"
)

const defaultClassName = "shmem"

var (
	// ErrUnknownSelector is returned by Dispatch for messages the class does not handle.
	ErrUnknownSelector = errors.New("no method for selector")
	// ErrObjectExists is returned by New when the name is already taken.
	ErrObjectExists = errors.New("object already exists")
)

// ClassConfig holds what every object of a Class shares.
type ClassConfig struct {
	// Name prefixes generated object names. Defaults to "shmem".
	Name string
	// Tables resolves the table names used by memset and memdump.
	Tables api.TableResolver
	// Segment configures each object's segment; nil means shm.DefaultConfig().
	Segment *shm.Config
	// Metrics is optional.
	Metrics *Metrics
}

type method func(ctx context.Context, o *Object, args []Atom)

// Class is the registration of the shmem object with a host: it holds the
// message table and the live objects. Create it once and share it.
type Class struct {
	name    string
	tables  api.TableResolver
	segCfg  *shm.Config
	metrics *Metrics
	methods map[string]method
	objects cmap.ConcurrentMap[string, *Object]
	seq     atomic.Uint64
}

// NewClass registers the shmem messages.
func NewClass(cfg ClassConfig) (*Class, error) {
	if cfg.Tables == nil {
		return nil, errors.New("class config: Tables is nil")
	}
	if cfg.Name == "" {
		cfg.Name = defaultClassName
	}
	if cfg.Segment == nil {
		cfg.Segment = shm.DefaultConfig()
	}
	if err := shm.VerifyConfig(cfg.Segment); err != nil {
		return nil, fmt.Errorf("class config: %w", err)
	}
	c := &Class{
		name:    cfg.Name,
		tables:  cfg.Tables,
		segCfg:  cfg.Segment,
		metrics: cfg.Metrics,
		objects: cmap.New[*Object](),
	}
	c.methods = map[string]method{
		"memset": func(_ context.Context, o *Object, args []Atom) {
			o.Memset(args)
		},
		"memdump": func(_ context.Context, o *Object, args []Atom) {
			o.Memdump(args)
		},
		"memclear": func(_ context.Context, o *Object, _ []Atom) {
			o.Memclear()
		},
		"memread": func(_ context.Context, o *Object, args []Atom) {
			o.Memread(floatArg(args, 0))
		},
		"allocate": func(ctx context.Context, o *Object, args []Atom) {
			if !isFloat(args, 0) || !isFloat(args, 1) {
				o.errorf(diagUsage, "allocate: expects <id> <size>")
				return
			}
			o.Allocate(ctx, args[0].Float, args[1].Float)
		},
	}
	internalLogger.debugf("%s version %s (%s)", c.name, Version, Revision)
	return c, nil
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// New creates an object. Its first two creation arguments are the segment id
// and size; both default to 0, which leaves the object unattached. An empty
// name is replaced by a generated one. Nil outlets discard their values.
func (c *Class) New(ctx context.Context, name string, out, info api.Outlet, args []Atom) (*Object, error) {
	if name == "" {
		name = fmt.Sprintf("%s%d", c.name, c.seq.Add(1))
	}
	if out == nil {
		out = api.Discard
	}
	if info == nil {
		info = api.Discard
	}
	seg, err := shm.New(c.segCfg)
	if err != nil {
		return nil, err
	}
	o := &Object{name: name, class: c, seg: seg, out: out, info: info}
	o.publish()
	if !c.objects.SetIfAbsent(name, o) {
		return nil, fmt.Errorf("%s: %w", name, ErrObjectExists)
	}
	c.metrics.objectCreated(name)
	o.Allocate(ctx, floatArg(args, 0), floatArg(args, 1))
	return o, nil
}

// Object returns the live object registered under name.
func (c *Class) Object(name string) (*Object, bool) {
	return c.objects.Get(name)
}

// Objects returns the live objects sorted by name.
func (c *Class) Objects() []*Object {
	objs := make([]*Object, 0, c.objects.Count())
	for _, o := range c.objects.Items() {
		objs = append(objs, o)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].name < objs[j].name })
	return objs
}

// Dispatch runs the method registered for selector on o.
func (c *Class) Dispatch(ctx context.Context, o *Object, selector string, args []Atom) error {
	m, ok := c.methods[selector]
	if !ok {
		o.errorf(diagSelector, "no method for '%s'", selector)
		return fmt.Errorf("%s: %w", selector, ErrUnknownSelector)
	}
	m(ctx, o, args)
	return nil
}

// Attached implements api.Health: it fails when a live object has no segment.
func (c *Class) Attached() error {
	var errs []error
	for _, o := range c.Objects() {
		if !o.Stats().Attached {
			errs = append(errs, fmt.Errorf("%s: no shared memory attached", o.name))
		}
	}
	return errors.Join(errs...)
}

// Close frees every live object.
func (c *Class) Close() {
	for _, o := range c.Objects() {
		o.Free()
	}
}
