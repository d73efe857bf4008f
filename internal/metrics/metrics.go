// Package metrics Prometheus-метрики записи и воспроизведения.
//
// Метрики:
// * replay_samples_recorded_total{track}: counter
// * replay_objects_registered_total{bucket}: counter (static/dynamic)
// * replay_saves_total{bucket,result}: counter
// * replay_sets_loaded / replay_load_failures_total: gauge / counter
// * replay_search_misses_total: counter (промахи поиска по времени)
// * replay_cache_requests_total{result}: counter (hit/miss кэша логов)
// * replay_process_rss_bytes: gauge (gopsutil, считается при сборе)
package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

const namespace = "replay"

var (
	SamplesRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_recorded_total",
		Help:      "Число записанных семплов по видам треков.",
	}, []string{"track"})

	ObjectsRegistered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_registered_total",
		Help:      "Число объектов, зарегистрированных сессией записи.",
	}, []string{"bucket"})

	Saves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saves_total",
		Help:      "Попытки сохранения логов по корзинам и результату.",
	}, []string{"bucket", "result"})

	SetsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sets_loaded",
		Help:      "Количество загруженных наборов объектов.",
	})

	LoadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "load_failures_total",
		Help:      "Неудачные загрузки логов (чтение, разбор, генерация).",
	})

	SearchMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_misses_total",
		Help:      "Запросы по времени, не нашедшие сегмент ни в одном направлении.",
	})

	CacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Чтения логов через кэш по результату (hit/miss).",
	}, []string{"result"})

	processRSS = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "process_rss_bytes",
		Help:      "Резидентная память процесса.",
	}, residentMemory)
)

func init() {
	prometheus.MustRegister(SamplesRecorded, ObjectsRegistered, Saves,
		SetsLoaded, LoadFailures, SearchMisses, CacheRequests, processRSS)
}

func residentMemory() float64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return 0
	}
	return float64(mem.RSS)
}

// Handler HTTP-обработчик /metrics для дефолтного регистра
func Handler() http.Handler {
	return promhttp.Handler()
}
