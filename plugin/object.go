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
	"math"
	"sync/atomic"

	"github.com/srediag/plugin-shmem/api"
	"github.com/srediag/plugin-shmem/pkg/shm"
)

const (
	usageMemset  = "shmem usage : [memset table_name [table_name []]< or [memset dest_offset data [src_offset [size]]< (data can be a float, a list, or a table name)"
	usageMemdump = "shmem usage : [memdump table_name [table_name []]< or [memdump src_offset table_name [dest_offset [size]]<"
)

// Stats is a snapshot of an object's segment, safe to read from any goroutine.
type Stats struct {
	Key      int
	Capacity int
	Attached bool
	Segment  string
}

// Object is one shmem instance: a segment plus the two outlets it reports on.
// Messages to one Object must not run concurrently; the Dispatcher takes
// care of that.
type Object struct {
	name  string
	class *Class
	seg   *shm.Segment
	out   api.Outlet
	info  api.Outlet
	stats atomic.Pointer[Stats]
}

// Name returns the name the object was registered under.
func (o *Object) Name() string { return o.name }

// Stats returns the last published segment state.
func (o *Object) Stats() Stats { return *o.stats.Load() }

// Segment gives direct access to the segment, under the same rules as the
// message methods.
func (o *Object) Segment() *shm.Segment { return o.seg }

func (o *Object) errorf(kind string, format string, a ...interface{}) {
	o.class.metrics.diagnostic(kind)
	internalLogger.errorf("%s: "+format, append([]interface{}{o.name}, a...)...)
}

func (o *Object) publish() {
	o.stats.Store(&Stats{
		Key:      o.seg.Key(),
		Capacity: o.seg.Capacity(),
		Attached: o.seg.Attached(),
		Segment:  o.seg.Name(),
	})
}

// toInt truncates a message float toward zero, saturating at the int32 range.
func toInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}

func toOffset(f float64) int {
	if n := toInt(f); n > 0 {
		return n
	}
	return 0
}

// Allocate replaces the object's segment and reports the key on the info
// outlet, or -1 when the segment could not be attached. An invalid key is
// only reported as a diagnostic.
func (o *Object) Allocate(ctx context.Context, key, size float64) {
	if math.IsNaN(key) || key < 1 {
		o.errorf(diagInvalidKey, "id should be > 0")
		return
	}
	id := toInt(key)
	err := o.seg.Allocate(ctx, id, toInt(size))
	if errors.Is(err, shm.ErrTeardown) {
		o.errorf(diagTeardown, "release failed: %v", err)
	}
	if errors.Is(err, shm.ErrInvalidCapacity) {
		if rerr := o.seg.Release(); rerr != nil {
			o.errorf(diagTeardown, "release failed: %v", rerr)
		}
	}
	o.publish()
	o.class.metrics.segmentCapacity(o.name, o.seg.Capacity())
	if !o.seg.Attached() {
		o.class.metrics.allocation(false)
		o.errorf(diagAllocate, "could not allocate shmem memory Id : %d, size %d: %v", id, toInt(size), err)
		o.info.Float(-1)
		return
	}
	o.class.metrics.allocation(true)
	internalLogger.debugf("%s: attached %s, %d elements", o.name, o.seg.Name(), o.seg.Capacity())
	o.info.Float(float32(id))
}

// Memset copies tables or inline values into the segment.
//
//	memset table1 [table2 ...]                     each table from offset 0, later ones overwrite
//	memset dest_offset table [src_offset [size]]   one table at dest_offset
//	memset dest_offset v1 [v2 ...]                  inline values at dest_offset
func (o *Object) Memset(args []Atom) {
	if !o.seg.Attached() {
		o.errorf(diagNotAttached, "Create a valid shared memory before setting data !")
		return
	}
	if len(args) < 1 {
		o.errorf(diagUsage, usageMemset)
		return
	}

	for i := 0; isSymbol(args, i); i++ {
		o.setTable(args[i].Symbol, 0, 0, o.seg.Capacity())
	}

	if len(args) > 1 && isFloat(args, 0) {
		offset := toOffset(args[0].Float)
		if isSymbol(args, 1) {
			srcOffset := 0
			size := o.seg.Capacity()
			if isFloat(args, 2) {
				srcOffset = toOffset(args[2].Float)
			}
			if isFloat(args, 3) {
				size = toInt(args[3].Float)
			}
			o.setTable(args[1].Symbol, srcOffset, offset, size)
			return
		}
		values := make([]float32, len(args)-1)
		for i := range values {
			values[i] = float32(floatArg(args, i+1))
		}
		n, err := o.seg.WriteValues(offset, values)
		if err != nil {
			o.errorf(diagNotAttached, "%v", err)
			return
		}
		o.class.metrics.copiedElements("in", n)
	}
}

func (o *Object) setTable(name string, srcOffset, destOffset, size int) {
	t, err := o.class.tables.Lookup(name)
	if err != nil {
		o.errorf(diagLookup, "%v", err)
		return
	}
	n, err := o.seg.CopyInto(t, srcOffset, destOffset, size)
	if err != nil {
		o.errorf(diagNotAttached, "%v", err)
		return
	}
	internalLogger.tracef("%s: copied %d from %s", o.name, n, name)
	o.class.metrics.copiedElements("in", n)
}

// Memdump copies the segment into tables.
//
//	memdump table1 [table2 ...]                      tables filled one after the other from offset 0
//	memdump src_offset table [dest_offset [size]]    one table from src_offset
func (o *Object) Memdump(args []Atom) {
	if !o.seg.Attached() {
		o.errorf(diagNotAttached, "Create a valid shared memory before dumping data !")
		return
	}
	if len(args) < 1 {
		o.errorf(diagUsage, usageMemdump)
		return
	}

	if isSymbol(args, 0) {
		src := 0
		for i := 0; isSymbol(args, i); i++ {
			src += o.dumpTable(args[i].Symbol, src, 0, o.seg.Capacity())
		}
		return
	}
	if len(args) > 1 && isFloat(args, 0) {
		srcOffset := toOffset(args[0].Float)
		destOffset := 0
		size := o.seg.Capacity()
		if isFloat(args, 2) {
			destOffset = toOffset(args[2].Float)
		}
		if isFloat(args, 3) {
			size = toInt(args[3].Float)
		}
		o.dumpTable(symbolArg(args, 1), srcOffset, destOffset, size)
	}
}

func (o *Object) dumpTable(name string, srcOffset, destOffset, size int) int {
	t, err := o.class.tables.Lookup(name)
	if err != nil {
		o.errorf(diagLookup, "%v", err)
		return 0
	}
	n, err := o.seg.CopyFrom(t, srcOffset, destOffset, size)
	if err != nil {
		o.errorf(diagNotAttached, "%v", err)
		return 0
	}
	internalLogger.tracef("%s: copied %d to %s", o.name, n, name)
	o.class.metrics.copiedElements("out", n)
	return n
}

// Memclear zeroes the segment.
func (o *Object) Memclear() {
	o.seg.Clear()
}

// Memread sends the element at index on the main outlet. Nothing is sent
// when no segment is attached.
func (o *Object) Memread(index float64) {
	if v, ok := o.seg.Read(index); ok {
		o.out.Float(v)
	}
}

// Free releases the segment and unregisters the object. It is safe to call
// more than once.
func (o *Object) Free() {
	if err := o.seg.Release(); err != nil {
		o.errorf(diagTeardown, "release failed: %v", err)
	}
	o.publish()
	removed := o.class.objects.RemoveCb(o.name, func(_ string, v *Object, exists bool) bool {
		return exists && v == o
	})
	if removed {
		o.class.metrics.objectFreed(o.name)
	}
}
