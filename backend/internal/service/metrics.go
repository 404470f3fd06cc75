package service

import (
	"net/http"

	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var boardOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "board_store_operations_total",
		Help: "Board store operations by outcome",
	},
	[]string{"operation", "outcome"},
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.IsNotFound(err):
		return "not_found"
	case errors.StatusCode(err) == http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}

func observe(operation string, err error) {
	boardOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func observeDelete(operation string, result domain.DeleteResult, err error) {
	if err == nil && result == domain.IncorrectPassword {
		boardOperationsTotal.WithLabelValues(operation, "incorrect_password").Inc()
		return
	}
	observe(operation, err)
}
