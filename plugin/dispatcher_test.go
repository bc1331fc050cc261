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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/plugin-shmem/pkg/shm"
)

var (
	dispatchObjects  = 8
	dispatchMessages = 500
)

func newTestDispatcher(t *testing.T, c *Class, workers int) *Dispatcher {
	d, err := NewDispatcher(context.Background(), c, workers)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestDispatcherKeepsPerObjectOrder(t *testing.T) {
	c, _ := newTestClass(t)
	d := newTestDispatcher(t, c, 4)
	out := &recorder{}

	o, err := c.New(context.Background(), "o", out, nil, []Atom{Float(1), Float(1)})
	require.NoError(t, err)

	for i := 0; i < dispatchMessages; i++ {
		require.NoError(t, d.Post(Message{Object: o, Selector: "memset", Args: []Atom{Float(0), Float(float64(i))}}))
		require.NoError(t, d.Post(Message{Object: o, Selector: "memread", Args: []Atom{Float(0)}}))
	}
	d.Wait()

	values := out.Values()
	require.Len(t, values, dispatchMessages)
	for i, v := range values {
		assert.Equal(t, float32(i), v, "memread %d", i)
	}
}

func TestDispatcherManyObjects(t *testing.T) {
	c, _ := newTestClass(t)
	d := newTestDispatcher(t, c, 3)

	outs := make([]*recorder, dispatchObjects)
	var wg sync.WaitGroup
	for i := 0; i < dispatchObjects; i++ {
		outs[i] = &recorder{}
		o, err := c.New(context.Background(), fmt.Sprintf("o%d", i), outs[i], nil, []Atom{Float(float64(i + 1)), Float(1)})
		require.NoError(t, err)
		wg.Add(1)
		//producer
		go func() {
			defer wg.Done()
			for k := 0; k < dispatchMessages; k++ {
				_ = d.Post(Message{Object: o, Selector: "memread", Args: []Atom{Float(0)}})
			}
		}()
	}
	wg.Wait()
	d.Wait()

	for i := range outs {
		assert.Len(t, outs[i].Values(), dispatchMessages)
	}
}

func TestDispatcherClose(t *testing.T) {
	c, _ := newTestClass(t)
	d, err := NewDispatcher(context.Background(), c, 1)
	require.NoError(t, err)
	o, err := c.New(context.Background(), "o", nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, d.Post(Message{Object: o, Selector: "bang"}))
	assert.Error(t, d.Post(Message{Selector: "memclear"}))

	d.Forget(o)
	d.Close()
	d.Close()
	assert.ErrorIs(t, d.Post(Message{Object: o, Selector: "memclear"}), ErrDispatcherClosed)
}

func TestDispatcherPostDuringClose(t *testing.T) {
	c, _ := newTestClass(t)
	d, err := NewDispatcher(context.Background(), c, 2)
	require.NoError(t, err)
	out := &recorder{}
	o, err := c.New(context.Background(), "o", out, nil, []Atom{Float(1), Float(1)})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < dispatchObjects; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < dispatchMessages; k++ {
				err := d.Post(Message{Object: o, Selector: "memread", Args: []Atom{Float(0)}})
				if err != nil {
					assert.ErrorIs(t, err, ErrDispatcherClosed)
					return
				}
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	d.Close()
	wg.Wait()

	// every accepted message was handled before Close returned
	assert.Len(t, out.Values(), accepted)
}

func TestNewDispatcherWorkers(t *testing.T) {
	c, _ := newTestClass(t)
	_, err := NewDispatcher(context.Background(), c, 0)
	assert.Error(t, err)
}

func BenchmarkDispatcherPost(b *testing.B) {
	tables := NewTableRegistry()
	c, err := NewClass(ClassConfig{Tables: tables, Segment: testSegmentConfig(shm.NewProcessBackend())})
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()
	d, err := NewDispatcher(context.Background(), c, 4)
	if err != nil {
		b.Fatal(err)
	}
	defer d.Close()
	o, err := c.New(context.Background(), "bench", nil, nil, []Atom{Float(1), Float(64)})
	if err != nil {
		b.Fatal(err)
	}
	args := []Atom{Float(0), Float(1), Float(2), Float(3)}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = d.Post(Message{Object: o, Selector: "memset", Args: args})
	}
	d.Wait()
}
