package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelf_http_request_duration_seconds",
		Help:    "Time from request receipt to response, by route pattern and status.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route", "status"})

	ReferentialFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_referential_faults_total",
		Help: "Rows dropped or skipped during composition because a referenced entity was missing.",
	}, []string{"entity"})

	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_search_requests_total",
		Help: "Free-text searches executed.",
	}, []string{"collection"})

	FavoriteWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_favorite_writes_total",
		Help: "Favorite create, update and delete attempts by outcome.",
	}, []string{"op", "result"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelf_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	BooksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shelf_books_total",
		Help: "Total number of books in the database.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shelf_users_total",
		Help: "Total number of registered users in the database.",
	})
)
