// Package engine is the realtime audio engine: it holds the live
// per-node state for a compiled Unit and interprets its plan one sample
// at a time. It never blocks on its own render
// path — control messages cross to/from the editor through bounded,
// drop-on-full queues, the same non-blocking-send idiom the teacher uses
// for its own playback event channel (player.go's sendEvent). It does
// allocate on that path: every sample builds a fresh input slice for each
// plan step, and nodes return fresh output slices.
package engine

import "github.com/cbegin/synthgraph/internal/message"

const queueCapacity = 256

// toEngineQueue is the editor->engine control queue. Enqueue
// never blocks: a full queue silently drops the newest message rather than
// stall the audio thread, matching the teacher's
// "select{case ch<-ev: default: // drop}" pattern.
type toEngineQueue chan message.ToEngine

func newToEngineQueue() toEngineQueue {
	return make(toEngineQueue, queueCapacity)
}

func (q toEngineQueue) enqueue(msg message.ToEngine) bool {
	select {
	case q <- msg:
		return true
	default:
		return false
	}
}

func (q toEngineQueue) drain(handle func(message.ToEngine)) {
	for {
		select {
		case msg := <-q:
			handle(msg)
		default:
			return
		}
	}
}

// fromEngineQueue is the engine->editor feedback queue (SET_CUR_STEP,
// SET_PATTERN, SEND_SAMPLES, CLOCK_PULSE). Drop-on-full for the same
// reason: emitting a SEND_SAMPLES buffer must never stall the callback
// that produced it.
type fromEngineQueue chan message.FromEngine

func newFromEngineQueue() fromEngineQueue {
	return make(fromEngineQueue, queueCapacity)
}

func (q fromEngineQueue) enqueue(msg message.FromEngine) bool {
	select {
	case q <- msg:
		return true
	default:
		return false
	}
}

// drainAll discards every currently queued message, used by Stop to flush
// the outgoing queue.
func (q fromEngineQueue) drainAll() {
	for {
		select {
		case <-q:
		default:
			return
		}
	}
}
