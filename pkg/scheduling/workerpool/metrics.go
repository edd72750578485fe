package workerpool

// Metric updates are no-ops when the pool was created without metrics.

func (p *Pool) recordPoolSize() {
	if p.metrics == nil {
		return
	}
	p.metrics.WorkerPoolSize.WithLabelValues(p.config.Name).Set(float64(p.config.WorkerCount))
}

func (p *Pool) recordActiveWorkers() {
	if p.metrics == nil {
		return
	}
	p.metrics.WorkerPoolActive.WithLabelValues(p.config.Name).Set(float64(p.barrier.Active()))
}

func (p *Pool) recordQueued() {
	if p.metrics == nil {
		return
	}
	p.metrics.WorkerPoolQueued.WithLabelValues(p.config.Name).Set(float64(p.queue.Len()))
}

func (p *Pool) recordScheduled() {
	if p.metrics == nil {
		return
	}
	p.metrics.TasksScheduled.WithLabelValues(p.config.Name).Inc()
	p.recordQueued()
}

func (p *Pool) recordRetry() {
	if p.metrics == nil {
		return
	}
	p.metrics.TasksRetried.WithLabelValues(p.config.Name).Inc()
}

func (p *Pool) recordExecution(result Result) {
	if p.metrics == nil {
		return
	}
	name := p.config.Name

	p.metrics.TasksExecuted.WithLabelValues(name).Inc()
	if result.Error != nil {
		p.metrics.TasksFailed.WithLabelValues(name).Inc()
	} else {
		p.metrics.TasksCompleted.WithLabelValues(name).Inc()
	}
	p.metrics.TaskExecutionDuration.WithLabelValues(name).Observe(result.Duration.Seconds())
	p.metrics.TaskDispatchLateness.WithLabelValues(name).Observe(max(result.Lateness, 0).Seconds())
	p.recordQueued()
}

func (p *Pool) recordDiscarded(n int) {
	if p.metrics == nil {
		return
	}
	p.metrics.TasksDiscarded.WithLabelValues(p.config.Name).Add(float64(n))
	p.recordQueued()
}
