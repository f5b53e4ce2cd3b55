package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders accepted by the exchange"},
		[]string{"symbol", "side", "type"},
	)
	OrderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_errors_total", Help: "Order attempts that failed, by stage"},
		[]string{"stage"},
	)
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "api_requests_total", Help: "Exchange REST requests issued"},
		[]string{"endpoint", "status"},
	)
	FilterCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "filter_cache_total", Help: "Symbol filter cache lookups"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(OrdersTotal, OrderErrors, APIRequests, FilterCache)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{ Addr: addr, Handler: mux }
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
