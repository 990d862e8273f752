// Package ratelimiter はupstream APIへの呼び出し頻度を制御する仕組みを提供します。
package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultSpacing は前のタスクの完了から次のタスク開始までの最小間隔です。
const DefaultSpacing = time.Second

// ErrQueueClosed はClose後にタスクを投入した場合に返されます。
var ErrQueueClosed = errors.New("request queue closed")

// Scheduler はタスクを直列に実行するキューのインターフェースです。
type Scheduler interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type task struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// RequestQueue はプロセス全体で1つのworkerがタスクをFIFO順に実行するキューです。
//
// タスクN+1は、タスクNが完了（成功・失敗を問わない）してから spacing 経過するまで開始しません。
// 銘柄ごとではなくキュー全体での制御です。
type RequestQueue struct {
	spacing   time.Duration
	tasks     chan *task
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Scheduler = (*RequestQueue)(nil)

// NewRequestQueue はworkerを起動した状態のRequestQueueを返します。
// spacing が負の場合は0として扱います。呼び出し側はCloseでworkerを停止してください。
func NewRequestQueue(spacing time.Duration, buffer int) *RequestQueue {
	if spacing < 0 {
		spacing = 0
	}
	if buffer < 0 {
		buffer = 0
	}
	q := &RequestQueue{
		spacing: spacing,
		tasks:   make(chan *task, buffer),
		done:    make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Do はfnをキューの末尾に追加し、実行が終わるまで待機してfnの結果を返します。
// 実行前にctxが終了した場合、fnは呼ばれずctx.Err()が返ります。
func (q *RequestQueue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t := &task{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case q.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}

	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
}

// Close はworkerを停止します。未実行のタスクは ErrQueueClosed で終了します。
func (q *RequestQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *RequestQueue) run() {
	defer q.wg.Done()

	var lastSettled time.Time
	for {
		var t *task
		select {
		case <-q.done:
			return
		case t = <-q.tasks:
		}

		if err := t.ctx.Err(); err != nil {
			t.result <- err
			continue
		}

		if !lastSettled.IsZero() {
			if wait := q.spacing - time.Since(lastSettled); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-q.done:
					timer.Stop()
					t.result <- ErrQueueClosed
					return
				case <-t.ctx.Done():
					timer.Stop()
					t.result <- t.ctx.Err()
					continue
				case <-timer.C:
				}
			}
		}

		err := t.fn(t.ctx)
		lastSettled = time.Now()
		t.result <- err
	}
}
