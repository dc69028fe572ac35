package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the ledger's prometheus collectors on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	salesRecorded  prometheus.Counter
	quantitySold   *prometheus.CounterVec
	shortfalls     *prometheus.CounterVec
	storageFaults  *prometheus.CounterVec
	recordDuration prometheus.Histogram
}

// NewCollector creates and registers the ledger collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		salesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sales_recorded_total",
			Help: "Sale events appended to the sales ledger",
		}),
		quantitySold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_quantity_sold_total",
			Help: "Units sold per recipe",
		}, []string{"recipe_id"}),
		shortfalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_stock_shortfalls_total",
			Help: "Ingredient deductions skipped for insufficient stock",
		}, []string{"ingredient"}),
		storageFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_storage_faults_total",
			Help: "Operations rolled back because of a storage failure",
		}, []string{"operation"}),
		recordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_record_sale_duration_seconds",
			Help:    "Time spent in the sale transaction",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(c.salesRecorded, c.quantitySold, c.shortfalls, c.storageFaults, c.recordDuration)
	return c
}

// SaleRecorded counts one committed sale.
func (c *Collector) SaleRecorded(recipeID string, quantity float64, took time.Duration) {
	if c == nil {
		return
	}
	c.salesRecorded.Inc()
	c.quantitySold.WithLabelValues(recipeID).Add(quantity)
	c.recordDuration.Observe(took.Seconds())
}

// Shortfall counts one skipped ingredient deduction.
func (c *Collector) Shortfall(ingredient string) {
	if c == nil {
		return
	}
	c.shortfalls.WithLabelValues(ingredient).Inc()
}

// StorageFault counts one rolled back operation.
func (c *Collector) StorageFault(operation string) {
	if c == nil {
		return
	}
	c.storageFaults.WithLabelValues(operation).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
