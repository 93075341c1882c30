package metrics

import (
	"errors"
	"net/http"
	"time"

	"gbf-bot/internal/recruit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry はボットのPrometheusメトリクスを保持する
type Registry struct {
	registry *prometheus.Registry

	RecruitmentsCreatedTotal *prometheus.CounterVec
	RecruitmentTransitions   *prometheus.CounterVec
	ParticipantEventsTotal   *prometheus.CounterVec
	PlatformErrorsTotal      *prometheus.CounterVec
	EventDuration            *prometheus.HistogramVec
	QuestCacheRequestsTotal  *prometheus.CounterVec
	ScheduledStartsTotal     prometheus.Counter
}

var _ recruit.Metrics = (*Registry)(nil)

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		RecruitmentsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbfbot_recruitments_created_total",
				Help: "Total recruitments created by battle type",
			},
			[]string{"battle_type"},
		),
		RecruitmentTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbfbot_recruitments_transitioned_total",
				Help: "Total recruitment status transitions by destination status",
			},
			[]string{"status"},
		),
		ParticipantEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbfbot_participant_events_total",
				Help: "Total reaction events handled by result",
			},
			[]string{"result"},
		),
		PlatformErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbfbot_platform_errors_total",
				Help: "Total chat platform call failures by operation",
			},
			[]string{"op"},
		),
		EventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbfbot_event_duration_seconds",
				Help:    "Event handling latency distribution in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"event"},
		),
		QuestCacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbfbot_quest_cache_requests_total",
				Help: "Quest lookups served by the cache by result",
			},
			[]string{"result"},
		),
		ScheduledStartsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gbfbot_scheduled_starts_total",
				Help: "Total recruitments started by the scheduler",
			},
		),
	}
}

func (r *Registry) RecruitmentCreated(battleType recruit.BattleType) {
	r.RecruitmentsCreatedTotal.WithLabelValues(battleType.Name()).Inc()
}

func (r *Registry) RecruitmentTransitioned(to recruit.Status) {
	r.RecruitmentTransitions.WithLabelValues(string(to)).Inc()
}

func (r *Registry) ParticipantChangeHandled(result string) {
	r.ParticipantEventsTotal.WithLabelValues(result).Inc()
}

func (r *Registry) CacheHit() {
	r.QuestCacheRequestsTotal.WithLabelValues("hit").Inc()
}

func (r *Registry) CacheMiss() {
	r.QuestCacheRequestsTotal.WithLabelValues("miss").Inc()
}

func (r *Registry) ScheduledStarts(n int) {
	r.ScheduledStartsTotal.Add(float64(n))
}

// ObserveEvent はイベント処理時間を記録し、PlatformError なら操作ごとに数える
func (r *Registry) ObserveEvent(event string, started time.Time, err error) {
	r.EventDuration.WithLabelValues(event).Observe(time.Since(started).Seconds())

	var perr *recruit.PlatformError
	if errors.As(err, &perr) {
		r.PlatformErrorsTotal.WithLabelValues(perr.Op).Inc()
	}
}

// Handler は /metrics 用のハンドラ
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer はテストでメトリクスを読み出すために使う
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
