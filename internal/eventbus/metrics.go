package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BusCollector отдает Stats шины в Prometheus в момент опроса /metrics
type BusCollector struct {
	bus EventBus
	reg prometheus.Registerer

	published *prometheus.Desc
	consumed  *prometheus.Desc
	dropped   *prometheus.Desc
	inflight  *prometheus.Desc
}

func busDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName("replay", "eventbus", name), help, nil, nil)
}

// RegisterBusMetrics регистрирует коллектор шины в reg. Повторная
// регистрация в том же реестре возвращает ошибку.
func RegisterBusMetrics(bus EventBus, reg prometheus.Registerer) (*BusCollector, error) {
	c := &BusCollector{
		bus:       bus,
		reg:       reg,
		published: busDesc("messages_published_total", "Опубликовано событий."),
		consumed:  busDesc("messages_consumed_total", "Событий, обработанных подписчиками."),
		dropped:   busDesc("messages_dropped_total", "Событий, отброшенных из-за ошибок или переполнения очереди."),
		inflight:  busDesc("messages_inflight", "Событий в очереди, еще не разосланных."),
	}
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.consumed
	ch <- c.dropped
	ch <- c.inflight
}

func (c *BusCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.bus.Metrics()
	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(s.Published))
	ch <- prometheus.MustNewConstMetric(c.consumed, prometheus.CounterValue, float64(s.Consumed))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped))
	ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(s.InFlight))
}

// Unregister снимает коллектор с реестра
func (c *BusCollector) Unregister() {
	c.reg.Unregister(c)
}
