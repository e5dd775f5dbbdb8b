package apu

// RingBuffer is the single-producer/single-consumer sample queue between
// the APU (producer, inside Console.frame()) and the host audio callback
// (consumer, typically on a separate thread). Capacity is 2048 stereo
// pairs, comfortably more than one NTSC frame's worth (~735 samples at
// 44.1 kHz), so a host that calls frame() at a steady ~60 Hz never blocks
// the producer.
//
// Correctness rests on the write index belonging exclusively to the
// producer and the read index exclusively to the consumer: both are plain
// ints with natural-word atomicity, so no lock is needed for the
// single-writer/single-reader case this type is restricted to.
type RingBuffer struct {
	left, right [2048]float32
	write, read int
}

func (r *RingBuffer) capacity() int { return len(r.left) }

// Push enqueues one stereo sample pair, overwriting the oldest unread pair
// if the consumer has fallen behind (HostAudioUnderrun is the consumer's
// concern, not an error the core raises).
func (r *RingBuffer) Push(left, right float32) {
	r.left[r.write] = left
	r.right[r.write] = right
	r.write = (r.write + 1) % r.capacity()
	if r.write == r.read {
		r.read = (r.read + 1) % r.capacity()
	}
}

// Available reports how many unread stereo pairs are queued.
func (r *RingBuffer) Available() int {
	n := r.write - r.read
	if n < 0 {
		n += r.capacity()
	}
	return n
}

// Pop dequeues one stereo pair, returning ok=false if the buffer is empty.
func (r *RingBuffer) Pop() (left, right float32, ok bool) {
	if r.read == r.write {
		return 0, 0, false
	}
	left, right = r.left[r.read], r.right[r.read]
	r.read = (r.read + 1) % r.capacity()
	return left, right, true
}
