/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
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
	"sync"
	"sync/atomic"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const defaultMailboxCap = 64

// ErrDispatcherClosed is returned by Post after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Message is one selector call addressed to an object.
type Message struct {
	Object   *Object
	Selector string
	Args     []Atom
}

// mailbox queues the messages of one object. At most one worker drains it at
// a time, so an object never handles two messages concurrently.
type mailbox struct {
	q       *queuepkg.Queue
	running atomic.Bool
}

// Dispatcher delivers messages to objects on a bounded worker pool. Messages
// to the same object run in posting order; different objects run in parallel.
type Dispatcher struct {
	class   *Class
	ctx     context.Context
	pool    *ants.Pool
	boxes   cmap.ConcurrentMap[string, *mailbox]
	pending sync.WaitGroup

	// mu orders pending.Add in Post before the Wait in Close.
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a dispatcher with at most workers concurrent objects.
func NewDispatcher(ctx context.Context, class *Class, workers int) (*Dispatcher, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("dispatcher workers:%d should be > 0", workers)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		class: class,
		ctx:   ctx,
		pool:  pool,
		boxes: cmap.New[*mailbox](),
	}, nil
}

// Post queues msg for its object.
func (d *Dispatcher) Post(msg Message) error {
	if msg.Object == nil {
		return errors.New("message without object")
	}
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrDispatcherClosed
	}
	d.pending.Add(1)
	d.mu.RUnlock()

	d.boxes.SetIfAbsent(msg.Object.name, &mailbox{q: queuepkg.New(defaultMailboxCap)})
	mb, _ := d.boxes.Get(msg.Object.name)
	if err := mb.q.Put(msg); err != nil {
		d.pending.Done()
		return err
	}
	d.schedule(mb)
	return nil
}

func (d *Dispatcher) schedule(mb *mailbox) {
	if !mb.running.CompareAndSwap(false, true) {
		return
	}
	if err := d.pool.Submit(func() { d.drain(mb) }); err != nil {
		internalLogger.warnf("dispatcher submit failed, draining inline: %v", err)
		d.drain(mb)
	}
}

func (d *Dispatcher) drain(mb *mailbox) {
	for {
		for !mb.q.Empty() {
			items, err := mb.q.Get(1)
			if err != nil || len(items) == 0 {
				break
			}
			msg, ok := items[0].(Message)
			if !ok {
				internalLogger.errorf("invalid mailbox element type %T", items[0])
				d.pending.Done()
				continue
			}
			_ = d.class.Dispatch(d.ctx, msg.Object, msg.Selector, msg.Args)
			d.pending.Done()
		}
		mb.running.Store(false)
		// a Post may have landed between the Empty check and the Store
		if mb.q.Empty() || !mb.running.CompareAndSwap(false, true) {
			return
		}
	}
}

// Wait blocks until every posted message has been handled.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Forget drops the mailbox of an object that was freed.
func (d *Dispatcher) Forget(o *Object) {
	if mb, ok := d.boxes.Pop(o.name); ok {
		mb.q.Dispose()
	}
}

// Close waits for pending messages and stops the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.Wait()
	for _, mb := range d.boxes.Items() {
		mb.q.Dispose()
	}
	d.boxes.Clear()
	d.pool.Release()
}
