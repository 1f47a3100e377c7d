package agent

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linear-solver/internal/logger"
)

var (
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solver_agent_stage_duration_seconds",
			Help:    "Duration of one loop stage, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"stage"},
	)

	tasksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solver_agent_tasks_total",
			Help: "Total number of tasks solved and submitted.",
		},
	)

	lastResidual = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "solver_agent_last_residual",
			Help: "Residual norm of the last submitted solution.",
		},
	)

	singularTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solver_agent_singular_total",
			Help: "Total number of tasks whose matrix was reported singular.",
		},
	)
)

func init() {
	prometheus.MustRegister(stageDuration)
	prometheus.MustRegister(tasksTotal)
	prometheus.MustRegister(lastResidual)
	prometheus.MustRegister(singularTotal)

	for _, stage := range stages {
		stageDuration.WithLabelValues(stage)
	}
}

func observe(r *Report) {
	for _, stage := range stages {
		stageDuration.WithLabelValues(stage).Observe(r.Timings.ByStage(stage).Seconds())
	}
	tasksTotal.Inc()
	lastResidual.Set(r.Residual)
	if r.Singular {
		singularTotal.Inc()
	}
}

// StartMetricsServer отдает /metrics на указанном порту в отдельной горутине
func StartMetricsServer(port string) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.INFO.Printf("Metrics server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogERROR("Metrics server error: " + err.Error())
		}
	}()
	return srv
}
