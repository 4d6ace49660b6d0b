package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/perfdash/internal/adapters/mq/queue"
	"github.com/okian/perfdash/internal/adapters/mq/worker"
)

type recorder struct {
	mu   sync.Mutex
	jobs []string
	fail map[string]error
}

func (r *recorder) handle(_ context.Context, job string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return r.fail[job]
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.jobs...)
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue[string](queue.WithCapacity(8))
		rec := &recorder{fail: map[string]error{"bad": errors.New("boom")}}
		w := worker.NewInMemoryWorker[string](q, rec.handle, worker.WithName("warm-0"))

		convey.Convey("When jobs are queued and the queue closes", func() {
			q.Enqueue(ctx, "a")
			q.Enqueue(ctx, "bad")
			q.Enqueue(ctx, "b")
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then every job is handled in order, failures included", func() {
				convey.So(rec.seen(), convey.ShouldResemble, []string{"a", "bad", "b"})
			})
		})

		convey.Convey("When the worker is shut down while idle", func() {
			go w.Run(ctx)
			err := w.Shutdown(ctx)

			convey.Convey("Then it exits cleanly and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown times out", func() {
			tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			convey.Convey("Then the timeout is reported", func() {
				convey.So(w.Shutdown(tctx), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue[string](queue.WithCapacity(64))
		rec := &recorder{}
		p := worker.NewPool[string](3, q, rec.handle)

		convey.So(p.Size(), convey.ShouldEqual, 3)

		convey.Convey("When jobs are queued and the pool shuts down", func() {
			p.Start(ctx)
			for _, j := range []string{"a", "b", "c", "d", "e"} {
				convey.So(q.Enqueue(ctx, j), convey.ShouldBeTrue)
			}
			err := p.Shutdown(ctx)

			convey.Convey("Then the queue is drained before the workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(rec.seen(), convey.ShouldHaveLength, 5)
			})
		})

		convey.Convey("When the pool is shut down without starting", func() {
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue[int]()
		p := worker.NewPool[int](0, q, func(context.Context, int) error { return nil })

		convey.So(p.Size(), convey.ShouldEqual, 2)
	})
}
