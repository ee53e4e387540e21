// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hotpatch

import (
	"sync"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// queuedCall holds one parked invocation's arguments, replayed in order
// once its prototype wakes.
type queuedCall struct {
	args []value.Value
}

// Queue implements the per-prototype call queue spec.md §4.8 describes:
// "while a prototype's is_sleeping flag is set, arriving calls are not
// executed; their arguments are copied into a queued node and the call
// returns a suspended marker. When the flag clears, queued invocations
// are replayed in insertion order." One Queue instance is shared by every
// closure whose Proto is the same sleeping prototype.
//
// Calls against a sleeping prototype return immediately with Suspended —
// there is no result to hand back to that original call site, since the
// call that eventually runs may happen long after (and on a different
// goroutine than) the caller that got the suspended marker. A caller that
// needs the eventual result should arrange its own notification (e.g. a
// callback closure queued as one of the parked arguments).
type Queue struct {
	mu      sync.Mutex
	pending map[*proto.Proto][]queuedCall
	// invoke runs a closure's body for real once its prototype wakes; set
	// at construction to whatever actually dispatches a call (package
	// vm's Call), keeping this package free of a vm import.
	invoke func(cl *proto.Closure, args []value.Value) ([]value.Value, error)
	// onReplayError reports a replayed call's failure; optional.
	onReplayError func(cl *proto.Closure, args []value.Value, err error)
}

func NewQueue(invoke func(cl *proto.Closure, args []value.Value) ([]value.Value, error)) *Queue {
	return &Queue{
		pending: make(map[*proto.Proto][]queuedCall),
		invoke:  invoke,
	}
}

// OnReplayError installs a callback notified when a replayed call
// returns an error; replay continues with the remaining queued calls
// regardless.
func (q *Queue) OnReplayError(fn func(cl *proto.Closure, args []value.Value, err error)) {
	q.onReplayError = fn
}

// Sleep marks p sleeping: subsequent calls through OnCall park instead of
// running.
func (q *Queue) Sleep(p *proto.Proto) {
	p.SetSleeping(true)
}

// Suspended is the marker value OnCall returns for every parked call
// (spec.md §4.8: "the call returns a suspended marker").
var Suspended = value.Bool(false)

// OnCall is installed as vm.VM.OnSleepingCall; it parks args for cl's
// prototype and returns immediately. The queue is bounded only by
// memory — spec.md §4.8: "dropping is not defined."
func (q *Queue) OnCall(cl *proto.Closure, args []value.Value) ([]value.Value, error) {
	q.mu.Lock()
	q.pending[cl.Proto] = append(q.pending[cl.Proto], queuedCall{args: args})
	q.mu.Unlock()
	return []value.Value{Suspended}, nil
}

// Wake clears p's sleeping flag and replays every call queued against it,
// in insertion order, each against cl (the caller picks which live
// closure now owns p, since hotreplace may have moved p under a new
// closure entirely). Replay runs synchronously on the calling goroutine.
func (q *Queue) Wake(p *proto.Proto, cl *proto.Closure) {
	p.SetSleeping(false)

	q.mu.Lock()
	calls := q.pending[p]
	delete(q.pending, p)
	q.mu.Unlock()

	for _, call := range calls {
		if _, err := q.invoke(cl, call.args); err != nil && q.onReplayError != nil {
			q.onReplayError(cl, call.args, err)
		}
	}
}

// Pending reports how many calls are currently parked against p, for
// diagnostics and tests.
func (q *Queue) Pending(p *proto.Proto) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[p])
}
