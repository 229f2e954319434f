package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flashkv/flashkv/internal/storage"
)

// StorageCollector is a prometheus.Collector that reads storage.Engine
// counters and the memory estimate on every scrape rather than keeping
// its own copies in sync with the engine.
type StorageCollector struct {
	engine *storage.Engine

	keyCount     *prometheus.Desc
	getCount     *prometheus.Desc
	setCount     *prometheus.Desc
	delCount     *prometheus.Desc
	expiredCount *prometheus.Desc
	memoryBytes  *prometheus.Desc
}

// NewStorageCollector builds a collector over engine. Registering it adds
// flashkv_keys, flashkv_{gets,sets,dels,expired}_total, and
// flashkv_memory_bytes to every scrape.
func NewStorageCollector(engine *storage.Engine) *StorageCollector {
	return &StorageCollector{
		engine:       engine,
		keyCount:     prometheus.NewDesc("flashkv_keys", "Number of live keys in the store.", nil, nil),
		getCount:     prometheus.NewDesc("flashkv_gets_total", "Total GET operations.", nil, nil),
		setCount:     prometheus.NewDesc("flashkv_sets_total", "Total SET operations.", nil, nil),
		delCount:     prometheus.NewDesc("flashkv_dels_total", "Total DEL operations.", nil, nil),
		expiredCount: prometheus.NewDesc("flashkv_expired_total", "Total keys reclaimed by lazy or active expiry.", nil, nil),
		memoryBytes:  prometheus.NewDesc("flashkv_memory_bytes", "Estimated bytes held by live entries.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StorageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keyCount
	ch <- c.getCount
	ch <- c.setCount
	ch <- c.delCount
	ch <- c.expiredCount
	ch <- c.memoryBytes
}

// Collect implements prometheus.Collector.
func (c *StorageCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.engine.Stats()
	ch <- prometheus.MustNewConstMetric(c.keyCount, prometheus.GaugeValue, float64(stats.KeyCount))
	ch <- prometheus.MustNewConstMetric(c.getCount, prometheus.CounterValue, float64(stats.GetCount))
	ch <- prometheus.MustNewConstMetric(c.setCount, prometheus.CounterValue, float64(stats.SetCount))
	ch <- prometheus.MustNewConstMetric(c.delCount, prometheus.CounterValue, float64(stats.DelCount))
	ch <- prometheus.MustNewConstMetric(c.expiredCount, prometheus.CounterValue, float64(stats.ExpiredCount))
	ch <- prometheus.MustNewConstMetric(c.memoryBytes, prometheus.GaugeValue, float64(c.engine.MemoryInfo()))
}
