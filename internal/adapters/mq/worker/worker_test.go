package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/carelog/internal/adapters/mq/queue"
	worker "github.com/okian/carelog/internal/adapters/mq/worker"
	logging "github.com/okian/carelog/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	tasks     chan queue.Task
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{tasks: make(chan queue.Task, 16)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Task {
	return mq.tasks
}

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.tasks) })
	return nil
}

func (mq *mockQueue) add(t queue.Task) {
	mq.tasks <- t
}

func waitFor(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()
		q := newMockQueue()

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(q,
				worker.WithName("stage-worker"),
				worker.WithLogger(logging.Get()),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And a task is queued", func() {
				var wg sync.WaitGroup
				var ran atomic.Bool
				wg.Add(1)
				q.add(queue.Task{RunID: "r1", Name: "events", Run: func(context.Context) {
					defer wg.Done()
					ran.Store(true)
				}})

				convey.Convey("Then the task body runs", func() {
					convey.So(waitFor(&wg, time.Second), convey.ShouldBeTrue)
					convey.So(ran.Load(), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And a task panics", func() {
				var wg sync.WaitGroup
				wg.Add(1)
				q.add(queue.Task{Name: "labs", Run: func(context.Context) {
					panic("boom")
				}})
				q.add(queue.Task{Name: "sleep", Run: func(context.Context) {
					wg.Done()
				}})

				convey.Convey("Then the worker survives and runs the next task", func() {
					convey.So(waitFor(&wg, time.Second), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And a task has no body", func() {
				var wg sync.WaitGroup
				wg.Add(1)
				q.add(queue.Task{Name: "empty"})
				q.add(queue.Task{Name: "effort", Run: func(context.Context) { wg.Done() }})

				convey.Convey("Then it is skipped", func() {
					convey.So(waitFor(&wg, time.Second), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And shutdown is requested", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()

				convey.Convey("Then it stops cleanly", func() {
					convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the queue is closed", func() {
			w := worker.NewInMemoryWorker(q)
			_ = q.Close()
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			go w.Run(context.Background())

			convey.Convey("Then the run loop exits", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()
		q := newMockQueue()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q)

			convey.Convey("Then it falls back to a CPU based size", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started with several workers", func() {
			p := worker.NewPool(3, q)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			var wg sync.WaitGroup
			var count atomic.Int32
			for i := 0; i < 10; i++ {
				wg.Add(1)
				q.add(queue.Task{Name: "decisions", Run: func(context.Context) {
					count.Add(1)
					wg.Done()
				}})
			}

			convey.Convey("Then every task is executed once", func() {
				convey.So(waitFor(&wg, 2*time.Second), convey.ShouldBeTrue)
				convey.So(count.Load(), convey.ShouldEqual, int32(10))
				convey.So(p.Size(), convey.ShouldEqual, 3)
			})

			convey.Convey("Then shutdown closes the queue and returns", func() {
				sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer scancel()
				convey.So(p.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a worker is still busy at shutdown", func() {
			p := worker.NewPool(1, q)
			p.Start(context.Background())

			started := make(chan struct{})
			release := make(chan struct{})
			q.add(queue.Task{Name: "narrative", Run: func(context.Context) {
				close(started)
				<-release
			}})
			<-started

			sctx, scancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer scancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then shutdown reports the timeout and Stop still drains the pool", func() {
				convey.So(errors.Is(err, worker.ErrShutdownTimeout), convey.ShouldBeTrue)
				close(release)

				stopped := make(chan struct{})
				go func() {
					p.Stop()
					close(stopped)
				}()
				var done bool
				select {
				case <-stopped:
					done = true
				case <-time.After(2 * time.Second):
				}
				convey.So(done, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When stopped after start", func() {
			p := worker.NewPool(2, q)
			p.Start(context.Background())

			convey.Convey("Then Stop returns", func() {
				p.Stop()
				convey.So(p.Size(), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a pool running stages that share a result", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		p := worker.NewPool(4, q)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		results := make([]int, 6)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			idx := i
			q.add(queue.Task{Name: "stage", Run: func(context.Context) {
				defer wg.Done()
				results[idx] = idx + 1
			}})
		}

		convey.Convey("Then each stage writes only its own slot", func() {
			convey.So(waitFor(&wg, 2*time.Second), convey.ShouldBeTrue)
			convey.So(results, convey.ShouldResemble, []int{1, 2, 3, 4, 5, 6})
		})
	})
}
