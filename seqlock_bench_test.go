package seqlock

import (
	"testing"
)

// BenchmarkObject_Load benchmarks uncontended reads for several value sizes.
func BenchmarkObject_Load(b *testing.B) {
	b.Run("pair_16B", func(b *testing.B) {
		o := NewWith(pair{1, 2})
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = o.Load()
		}
	})
	b.Run("payload_288B", func(b *testing.B) {
		o := NewWith(makeInvPayload(1))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = o.Load()
		}
	})
	b.Run("odd_3B", func(b *testing.B) {
		o := NewWith(oddBytes{1, 2, 3})
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = o.Load()
		}
	})
}

// BenchmarkObject_TryLoad benchmarks the single-attempt read path.
func BenchmarkObject_TryLoad(b *testing.B) {
	o := NewWith(pair{1, 2})
	var v pair
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.TryLoad(&v)
	}
}

// BenchmarkObject_Store benchmarks the wait-free write path.
func BenchmarkObject_Store(b *testing.B) {
	b.Run("pair_16B", func(b *testing.B) {
		o := New[pair]()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			o.Store(pair{A: uint64(i), B: ^uint64(i)})
		}
	})
	b.Run("payload_288B", func(b *testing.B) {
		o := New[invPayload]()
		v := makeInvPayload(1)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			o.Store(v)
		}
	})
}

// BenchmarkObject_LoadParallel benchmarks concurrent readers against one
// background writer.
func BenchmarkObject_LoadParallel(b *testing.B) {
	o := NewWith(makeInvPayload(1))
	stop := make(chan struct{})
	go func() {
		var x uint64
		for {
			select {
			case <-stop:
				return
			default:
				x++
				o.Store(makeInvPayload(x))
			}
		}
	}()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = o.Load()
		}
	})
	b.StopTimer()
	close(stop)
}
