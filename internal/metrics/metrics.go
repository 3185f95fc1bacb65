package metrics

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/database"
)

// Source is the part of the database the gauges are computed from
type Source interface {
	CountUsers(ctx context.Context) (int, error)
	GetTransactionTotals(ctx context.Context, from, to time.Time) (*database.TransactionTotals, error)
}

// Collector owns the service's Prometheus registry. Gauges are recomputed
// from the database on every scrape; counters are bumped by the services.
type Collector struct {
	src      Source
	registry *prometheus.Registry
	loc      *time.Location
	now      func() time.Time

	usersTotal         prometheus.Gauge
	transactionsTotal  prometheus.Gauge
	incomeMTD          prometheus.Gauge
	expenseMTD         prometheus.Gauge
	expenseByCategory  *prometheus.GaugeVec
	ocrScans           *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	recurringGenerated prometheus.Counter
}

// New creates a collector and registers every metric on a fresh registry
func New(src Source, loc *time.Location) *Collector {
	if loc == nil {
		loc = time.UTC
	}
	c := &Collector{
		src:      src,
		registry: prometheus.NewRegistry(),
		loc:      loc,
		now:      time.Now,
	}

	c.usersTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hisabkitab",
		Name:      "users_total",
		Help:      "Registered users",
	})
	c.transactionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hisabkitab",
		Name:      "transactions_total",
		Help:      "Recorded transactions across all users",
	})
	c.incomeMTD = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hisabkitab",
		Name:      "income_mtd_rupees",
		Help:      "Month-to-date income across all users",
	})
	c.expenseMTD = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hisabkitab",
		Name:      "expense_mtd_rupees",
		Help:      "Month-to-date expense across all users",
	})
	c.expenseByCategory = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hisabkitab",
		Name:      "expense_by_category_mtd_rupees",
		Help:      "Month-to-date expense by category name",
	}, []string{"category"})
	c.ocrScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisabkitab",
		Name:      "ocr_scans_total",
		Help:      "Bill images run through OCR by result",
	}, []string{"result"})
	c.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisabkitab",
		Name:      "notifications_total",
		Help:      "Outbound notifications by channel and result",
	}, []string{"channel", "result"})
	c.recurringGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hisabkitab",
		Name:      "recurring_expenses_generated_total",
		Help:      "Expenses created from recurring schedules",
	})

	c.registry.MustRegister(
		c.usersTotal,
		c.transactionsTotal,
		c.incomeMTD,
		c.expenseMTD,
		c.expenseByCategory,
		c.ocrScans,
		c.notifications,
		c.recurringGenerated,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Refresh recomputes the database-backed gauges
func (c *Collector) Refresh(ctx context.Context) error {
	users, err := c.src.CountUsers(ctx)
	if err != nil {
		return err
	}
	c.usersTotal.Set(float64(users))

	from := monthStart(c.now().In(c.loc))
	totals, err := c.src.GetTransactionTotals(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return err
	}
	c.transactionsTotal.Set(float64(totals.Count))
	c.incomeMTD.Set(totals.Income)
	c.expenseMTD.Set(totals.Expense)

	c.expenseByCategory.Reset()
	for name, amount := range totals.ByCategory {
		c.expenseByCategory.WithLabelValues(name).Set(amount)
	}
	return nil
}

// Handler serves the exposition format, refreshing gauges first. A failed
// refresh is logged and the previous values are served.
func (c *Collector) Handler() fiber.Handler {
	h := adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return func(ctx *fiber.Ctx) error {
		rctx, cancel := context.WithTimeout(ctx.Context(), 5*time.Second)
		defer cancel()
		if err := c.Refresh(rctx); err != nil {
			log.WithError(err).Warn("metrics refresh failed")
		}
		return h(ctx)
	}
}

// ObserveOCR counts one OCR attempt
func (c *Collector) ObserveOCR(err error) {
	if c == nil {
		return
	}
	c.ocrScans.WithLabelValues(result(err)).Inc()
}

// ObserveNotification counts one send attempt on channel
func (c *Collector) ObserveNotification(channel string, err error) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(channel, result(err)).Inc()
}

// ObserveRecurring counts generated recurring expenses
func (c *Collector) ObserveRecurring(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.recurringGenerated.Add(float64(n))
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
