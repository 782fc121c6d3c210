package worker_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	worker "github.com/okian/jobguard/internal/adapters/mq/worker"
	"github.com/okian/jobguard/internal/domain/model"
	logging "github.com/okian/jobguard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	tasks chan worker.Task
	once  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{tasks: make(chan worker.Task, 128)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Task {
	return mq.tasks
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.tasks) })
	return nil
}

func (mq *mockQueue) add(t worker.Task) { //nolint:gocritic // test helper
	mq.tasks <- t
}

// mockPredictor flags any text containing "scam"; "explode" fails the call
// and "boom" panics.
type mockPredictor struct {
	calls atomic.Int64
	delay time.Duration
}

func (mp *mockPredictor) Predict(ctx context.Context, texts []string) ([]model.PredictionResult, error) {
	mp.calls.Add(1)
	if mp.delay > 0 {
		time.Sleep(mp.delay)
	}
	out := make([]model.PredictionResult, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "boom") {
			panic("vectorizer blew up")
		}
		if strings.Contains(t, "explode") {
			return nil, errors.New("model exploded")
		}
		if strings.Contains(t, "scam") {
			out[i] = model.PredictionResult{FraudPrediction: 1, FraudProbability: 0.9}
		} else {
			out[i] = model.PredictionResult{FraudPrediction: 0, FraudProbability: 0.1}
		}
	}
	return out, nil
}

func await(t worker.Task) (model.InferenceOutcome, bool) { //nolint:gocritic // test helper
	select {
	case out := <-t.Reply:
		return out, true
	case <-time.After(2 * time.Second):
		return model.InferenceOutcome{}, false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		predictor := &mockPredictor{}
		w := worker.NewInMemoryWorker(queue, predictor, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a task is queued", func() {
			task := model.NewInferenceTask(context.Background(), "t1", []string{"legit job", "scam job"})
			queue.add(task)
			out, ok := await(task)

			convey.Convey("Then the worker replies with results in input order", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(out.Err, convey.ShouldBeNil)
				convey.So(out.Results, convey.ShouldHaveLength, 2)
				convey.So(out.Results[0].FraudPrediction, convey.ShouldEqual, 0)
				convey.So(out.Results[1].FraudPrediction, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When inference fails", func() {
			task := model.NewInferenceTask(context.Background(), "t2", []string{"explode"})
			queue.add(task)
			out, ok := await(task)

			convey.Convey("Then the error is replied", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(out.Err, convey.ShouldNotBeNil)
				convey.So(out.Results, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the predictor panics", func() {
			task := model.NewInferenceTask(context.Background(), "t-panic", []string{"boom"})
			queue.add(task)
			out, ok := await(task)

			convey.Convey("Then the panic is replied as an error and the worker keeps running", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(out.Err, convey.ShouldNotBeNil)
				convey.So(out.Err.Error(), convey.ShouldContainSubstring, "predictor panic")

				next := model.NewInferenceTask(context.Background(), "t-after", []string{"scam"})
				queue.add(next)
				again, ok := await(next)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(again.Err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the caller gave up before processing", func() {
			callerCtx, callerCancel := context.WithCancel(context.Background())
			callerCancel()
			task := model.NewInferenceTask(callerCtx, "t3", []string{"scam"})
			queue.add(task)
			out, ok := await(task)

			convey.Convey("Then the task is skipped without running inference", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(errors.Is(out.Err, context.Canceled), convey.ShouldBeTrue)
				convey.So(predictor.calls.Load(), convey.ShouldEqual, int64(0))
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it should shutdown gracefully", func() {
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestInMemoryWorker_ContextCancel(t *testing.T) {
	convey.Convey("Given a worker whose run context is cancelled", t, func() {
		_ = logging.Init()

		w := worker.NewInMemoryWorker(newMockQueue(), &mockPredictor{})
		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(stopped)
		}()
		cancel()

		convey.Convey("Then Run returns", func() {
			select {
			case <-stopped:
			case <-time.After(time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker pool", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		predictor := &mockPredictor{}

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, queue, predictor)

			convey.Convey("Then it falls back to at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started with three workers", func() {
			pool := worker.NewPool(3, queue, predictor)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			convey.So(pool.Size(), convey.ShouldEqual, 3)

			convey.Convey("And many tasks are submitted concurrently", func() {
				const n = 60
				tasks := make([]worker.Task, n)
				var wg sync.WaitGroup
				for i := 0; i < n; i++ {
					tasks[i] = model.NewInferenceTask(context.Background(), fmt.Sprintf("t%d", i),
						[]string{fmt.Sprintf("posting %d scam", i), "plain"})
					wg.Add(1)
					go func(tk worker.Task) { //nolint:gocritic // test helper
						defer wg.Done()
						queue.add(tk)
					}(tasks[i])
				}
				wg.Wait()

				convey.Convey("Then every task gets its own reply", func() {
					for _, tk := range tasks {
						out, ok := await(tk)
						convey.So(ok, convey.ShouldBeTrue)
						convey.So(out.Err, convey.ShouldBeNil)
						convey.So(out.Results[0].FraudPrediction, convey.ShouldEqual, 1)
						convey.So(out.Results[1].FraudPrediction, convey.ShouldEqual, 0)
					}
				})
			})

			convey.Convey("And shutdown is requested with tasks still queued", func() {
				predictor.delay = 5 * time.Millisecond
				tasks := make([]worker.Task, 10)
				for i := range tasks {
					tasks[i] = model.NewInferenceTask(context.Background(), fmt.Sprintf("q%d", i), []string{"scam"})
					queue.add(tasks[i])
				}

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()
				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then queued tasks are drained before it returns", func() {
					convey.So(err, convey.ShouldBeNil)
					for _, tk := range tasks {
						select {
						case out := <-tk.Reply:
							convey.So(out.Err, convey.ShouldBeNil)
						default:
							convey.So(tk.ID+" unanswered", convey.ShouldBeEmpty)
						}
					}
				})
			})
		})

		convey.Convey("When a drain outlasts the shutdown deadline", func() {
			predictor.delay = 200 * time.Millisecond
			pool := worker.NewPool(1, queue, predictor)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			busy := model.NewInferenceTask(context.Background(), "slow", []string{"legit"})
			queue.add(busy)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then Shutdown reports the deadline after stopping the workers", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
				out, ok := await(busy)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(out.Err, convey.ShouldBeNil)
			})
		})
	})
}
