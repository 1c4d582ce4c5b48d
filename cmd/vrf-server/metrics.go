//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package main

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	metrics "github.com/hashicorp/go-metrics"
	"github.com/hashicorp/go-metrics/datadog"
	"github.com/hashicorp/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamlabs/ringvrf/cmd/internal/util"
)

func successLabel(ok bool) metrics.Label {
	return metrics.Label{Name: "success", Value: fmt.Sprint(ok)}
}

func endpointLabel(endpoint string) metrics.Label {
	return metrics.Label{Name: "endpoint", Value: endpoint}
}

// instrument wraps an API handler, counting calls and measuring latency
// per endpoint.
func instrument(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		start := time.Now()
		metrics.IncrCounterWithLabels([]string{"api_handler"}, 1, []metrics.Label{endpointLabel(endpoint)})
		handler(rw, req)
		metrics.MeasureSinceWithLabels([]string{"api_handler", "duration"}, start, []metrics.Label{endpointLabel(endpoint)})
	}
}

func exportMetrics(addr string) {
	prom, err := prometheus.NewPrometheusSink()
	if err != nil {
		util.Log().Fatalf("building prometheus sink: %v", err)
	}
	sink := metrics.FanoutSink{prom}

	if addr != "" {
		util.Log().Infof("Initiating datadog metrics at %q", addr)
		ddog, err := datadog.NewDogStatsdSink(addr, "")
		if err != nil {
			util.Log().Fatalf("error initializing statsd client: %v", err)
		}
		sink = append(sink, ddog)
	}

	// Disable hostname tagging, this can be provided by the downstream sink
	cfg := metrics.DefaultConfig("ringvrf")
	cfg.EnableHostname = false
	cfg.EnableHostnameLabel = false
	if _, err = metrics.NewGlobal(cfg, sink); err != nil {
		util.Log().Fatalf("error initializing metrics : %v", err)
	}

	metrics.IncrCounterWithLabels([]string{"build_info"}, 1, []metrics.Label{
		{Name: "version", Value: Version},
		{Name: "goversion", Value: GoVersion},
	})
}

func metricsServer(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			fmt.Fprintln(rw, "Hi, I'm a ring VRF metrics and debugging server!")
		} else {
			rw.WriteHeader(404)
			fmt.Fprintln(rw, "404 not found")
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, req *http.Request) {
		fmt.Fprintln(rw, "ok")
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("/debug/version", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "Version: %s, GoVersion: %s", Version, GoVersion)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	util.Log().Infof("Starting metrics server at: %v", addr)
	// go 1.24 requires a constant format string to Printf-like functions
	util.Log().Fatalf("%s", srv.ListenAndServe().Error())
}
