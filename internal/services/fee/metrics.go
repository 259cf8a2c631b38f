package fee

import "time"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordFee(string)                {}
func (n *NoopMetricsCollector) RecordSkipped(string)            {}
func (n *NoopMetricsCollector) RecordConversion(string, string) {}
func (n *NoopMetricsCollector) RecordOverage()                  {}
func (n *NoopMetricsCollector) RecordRunDuration(time.Duration) {}
func (n *NoopMetricsCollector) RecordError(string, string)      {}
