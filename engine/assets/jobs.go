package assets

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
)

// JobTask is a unit of work run by a JobSystem worker.
type JobTask struct {
	Run func() error
	// Called from the worker with the outcome of Run, if set.
	OnComplete func()
	OnFailure  func(err error)
}

/**
 * @brief A fixed pool of workers draining a job queue. Used for asset work
 * that does not touch the graphics context, like decoding images.
 */
type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				if err := job.Run(); err != nil {
					core.LogDebug("job failed: %s", err)
					if job.OnFailure != nil {
						job.OnFailure(err)
					}
					continue
				}
				if job.OnComplete != nil {
					job.OnComplete()
				}
			}
		}()
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full. Submitting after Shutdown panics.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}

// Shutdown waits for the queued jobs to finish and stops the workers.
func (js *JobSystem) Shutdown() {
	js.closeOnce.Do(func() { close(js.jobQueue) })
	js.wg.Wait()
}
