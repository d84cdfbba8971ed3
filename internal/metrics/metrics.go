package metrics

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpStatusCounters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_tracker_http_status",
			Help: "Count of various http status.",
		},
		[]string{"status"},
	)

	StatusMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_tracker_candidate_status_moves",
			Help: "Candidate status changes by destination column and source.",
		},
		[]string{"to_status", "source"},
	)

	MailProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_tracker_mail_processed",
			Help: "Mailbox messages handled by the sync worker, by outcome.",
		},
		[]string{"outcome"},
	)
)

// RecordHTTPStats counts responses by status code.
func RecordHTTPStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		httpStatusCounters.WithLabelValues(fmt.Sprintf("%v", c.Writer.Status())).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
