package uptime

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ===== Monitoring loop and internals =====

// launch must be called with c.mu held.
func (c *Checker) launch(t *target) {
	c.wg.Add(1)
	go c.monitor(t)
}

// monitor probes t, reports the outcome, waits, and repeats until stopped.
func (c *Checker) monitor(t *target) {
	defer c.wg.Done()
	ep := t.endpoint
	c.ilog("Scheduling site %s (%s) %s", ep.Name, ep.URL, describeSchedule(t))

	timer := time.NewTimer(c.firstDelay(t))
	defer timer.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.stop:
			return
		case <-timer.C:
			c.runCheck(t)
			timer.Reset(c.nextDelay(t))
		}
	}
}

func (c *Checker) firstDelay(t *target) time.Duration {
	if t.schedule != nil {
		return c.nextDelay(t)
	}
	return 0
}

func (c *Checker) nextDelay(t *target) time.Duration {
	if t.schedule == nil {
		return t.endpoint.Frequency
	}
	now := time.Now()
	return t.schedule.Next(now).Sub(now)
}

func describeSchedule(t *target) string {
	if t.schedule != nil {
		return fmt.Sprintf("on schedule %q", t.endpoint.Schedule)
	}
	return fmt.Sprintf("every %v", t.endpoint.Frequency)
}

func (c *Checker) runCheck(t *target) {
	ep := t.endpoint
	select {
	case c.slots <- struct{}{}:
	case <-c.stopCh:
		return
	case <-t.stop:
		return
	}
	c.ilog("Checking site %s at %s", ep.Name, time.Now().Format(time.RFC3339))
	out := c.prober.Probe(c.ctx, ep)
	<-c.slots

	// A probe cut short by Stop says nothing about the endpoint.
	if c.ctx.Err() != nil {
		return
	}

	notified := t.reporter.Report(c.ctx, out)
	res := Result{
		Endpoint:  ep,
		Timestamp: out.CheckedAt,
		Outcome:   out,
		Notified:  notified,
	}

	t.mu.Lock()
	t.last = &res
	t.mu.Unlock()

	c.saveLog(res)
	c.publish(res)
	c.log(res)
	c.ilog("Finished check for site %s (kind=%s, notified=%v, latency=%v)", ep.Name, out.Kind, notified, out.Latency)
}

// publish never blocks the loop: results are dropped when nobody drains the channel.
func (c *Checker) publish(res Result) {
	select {
	case c.results <- res:
	default:
		c.ilog("Results buffer full, dropped result for site %s", res.Endpoint.Name)
	}
}

func (c *Checker) saveLog(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := res.Endpoint.ID
	if _, ok := c.targets[id]; !ok {
		return
	}
	c.logs[id] = append(c.logs[id], res)
	if len(c.logs[id]) > c.logRetention {
		c.logs[id] = c.logs[id][len(c.logs[id])-c.logRetention:]
	}
}

func (c *Checker) log(res Result) {
	out := res.Outcome
	switch c.logLevel {
	case LogNone:
		return
	case LogError:
		if !res.Success() {
			c.logger.Error("Site DOWN", zap.String("name", res.Endpoint.Name), zap.Stringer("kind", out.Kind), zap.String("error", out.Message))
		}
	case LogInfo:
		if res.Success() {
			c.logger.Info("Site UP", zap.String("name", res.Endpoint.Name), zap.Int("status_code", out.StatusCode))
		} else {
			c.logger.Warn("Site DOWN", zap.String("name", res.Endpoint.Name), zap.Stringer("kind", out.Kind), zap.String("error", out.Message))
		}
	case LogDebug:
		c.logger.Debug("Site check", zap.String("name", res.Endpoint.Name), zap.Stringer("kind", out.Kind),
			zap.Int("status_code", out.StatusCode), zap.Duration("latency", out.Latency),
			zap.String("detail", out.Detail), zap.Bool("notified", res.Notified))
	}
}

// ===== Internal Logging Helper =====
func (c *Checker) ilog(format string, args ...interface{}) {
	if c.enableInternalLogs {
		c.logger.Info(fmt.Sprintf("[INTERNAL] "+format, args...))
	}
}
