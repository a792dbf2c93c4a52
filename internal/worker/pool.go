// Package worker 提供有界后台任务池。
//
// 任务按 Key 去重：同一 Key 在排队或执行期间再次提交会被拒绝（单飞）。
// 队列满时 Submit 立即返回 ErrQueueFull，不阻塞调用方的请求路径。
// 每个任务完成后依次回调已注册的 Hook，失败可观测。
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gso-office/backend/config"
)

var (
	ErrDuplicate  = errors.New("同 Key 任务已在队列或执行中")
	ErrQueueFull  = errors.New("任务队列已满")
	ErrPoolClosed = errors.New("任务池已关闭")
)

// Job 后台任务
type Job struct {
	Key string
	Run func(ctx context.Context) error
}

// Result 任务执行结果
type Result struct {
	Key      string
	Err      error
	Duration time.Duration
}

// Hook 任务完成回调
type Hook func(Result)

// Pool 固定并发的后台任务池
type Pool struct {
	jobs    chan Job
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	hooks   []Hook
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool 创建任务池并启动 worker
func NewPool(cfg *config.WorkerConfig, logger *zap.Logger) *Pool {
	size := cfg.PoolSize
	if size <= 0 {
		size = 1
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    make(chan Job, queue),
		timeout: cfg.JobTimeout,
		logger:  logger,
		pending: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.loop()
	}
	return p
}

// OnComplete 注册完成回调
func (p *Pool) OnComplete(h Hook) {
	p.mu.Lock()
	p.hooks = append(p.hooks, h)
	p.mu.Unlock()
}

// Submit 非阻塞提交任务
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	if _, ok := p.pending[job.Key]; ok {
		return ErrDuplicate
	}

	select {
	case p.jobs <- job:
		p.pending[job.Key] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending 判断 Key 是否在排队或执行中
func (p *Pool) Pending(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[key]
	return ok
}

// Shutdown 停止接收新任务并等待队列排空
// ctx 到期时取消正在执行的任务并返回 ctx.Err()
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for job := range p.jobs {
		res := p.run(job)

		p.mu.Lock()
		delete(p.pending, job.Key)
		hooks := append([]Hook(nil), p.hooks...)
		p.mu.Unlock()

		if res.Err != nil {
			p.logger.Warn("后台任务失败", zap.String("key", res.Key), zap.Duration("duration", res.Duration), zap.Error(res.Err))
		}
		for _, h := range hooks {
			h(res)
		}
	}
}

func (p *Pool) run(job Job) (res Result) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	res.Key = job.Key
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("任务 panic: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	res.Err = job.Run(ctx)
	return res
}
