package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAllowed   = "allowed"
	outcomeDenied    = "denied"
	outcomeUnlimited = "unlimited"
	outcomeFailOpen  = "fail_open"
)

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commentpull_ledger_decisions_total",
	Help: "Reservation decisions partitioned by outcome.",
}, []string{"outcome"})
