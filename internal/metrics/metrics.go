package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	ReferencesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_vacancy_references_total",
			Help: "Vacancy references handled, by outcome.",
		},
		[]string{"outcome"},
	)
	InsertedRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_inserted_rows_total",
			Help: "Rows inserted into the store, by table.",
		},
		[]string{"table"},
	)
	StoredVacanciesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_stored_vacancies_total",
			Help: "Vacancies stored for the first time, by query term.",
		},
		[]string{"query"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of each ingestion run in seconds.",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200},
		},
	)
	StepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "ingest_step_duration_seconds",
			Help:       "Duration of each step of a vacancy ingestion.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
)

func Register() {
	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(ReferencesCounter)
	prometheus.MustRegister(InsertedRowsCounter)
	prometheus.MustRegister(StoredVacanciesCounter)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(StepDuration)
}

func StartMetricsServer(address string) {

	Register()

	if address == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, mux))
	}()
	log.Infof("metrics are served on %s/metrics", address)
}
