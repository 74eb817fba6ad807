package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tweetmd_client_requests_total",
	Help: "Number of API requests, by backend and HTTP status",
}, []string{"backend", "status"})

var apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "tweetmd_client_request_duration_seconds",
	Help:    "Duration of API requests",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
}, []string{"backend"})

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tweetmd_client_cache_lookups_total",
	Help: "Number of cache lookups, by kind and result",
}, []string{"kind", "result"})
