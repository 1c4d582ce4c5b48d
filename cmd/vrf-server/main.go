//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Command vrf-server is the main server process. It exposes the ring
// VRF operations (ring commitments, prover and verifier handles,
// signing and verification, ticket batches) and the work-package
// authorizer and service entry points over an HTTP JSON API.
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jamlabs/ringvrf/authorizer"
	"github.com/jamlabs/ringvrf/cmd/internal/config"
	"github.com/jamlabs/ringvrf/cmd/internal/util"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
	"github.com/jamlabs/ringvrf/ring"
	"github.com/jamlabs/ringvrf/service"
)

var (
	Version   = "dev"
	GoVersion = runtime.Version()

	configFile = flag.String("config", "", "Location of config file.")
)

func main() {
	flag.Parse()
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	// Load config from disk.
	if *configFile == "" {
		logger := zerolog.New(consoleWriter).With().Timestamp().Logger()
		logger.Fatal().Msg("no config file specified")
	}
	config, err := config.Read(*configFile)
	if err != nil {
		logger := zerolog.New(consoleWriter).With().Timestamp().Logger()
		logger.Fatal().Msgf("failed to parse config file: %v", err)
	}

	var zeroLogLogger zerolog.Logger
	var logWriter io.Writer
	if len(config.LogOutputFile) > 0 {
		logWriter = zerolog.MultiLevelWriter(
			consoleWriter,
			&lumberjack.Logger{
				Filename:   config.LogOutputFile,
				MaxBackups: 10,
				Compress:   true,
			},
		)
		zeroLogLogger = zerolog.New(logWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	} else {
		logWriter = consoleWriter
		zeroLogLogger = zerolog.New(logWriter).With().Caller().Timestamp().Logger()
	}
	util.SetLoggerInstance(&zeroLogLogger)

	// Start the metrics server.
	exportMetrics(config.DatadogAddr)
	go metricsServer(config.MetricsAddr)

	// Load the embedded ring parameter set.
	params, err := ringproof.NewParams(config.RingConfig.MaxSize)
	if err != nil {
		util.Log().Fatalf("failed to load ring parameters: %v", err)
	}
	util.Log().Infof("Ring parameters loaded: max ring size %d, srs digest %x", params.MaxRing(), params.SRSDigest())

	// Connect the authorizer state store.
	store, err := config.AuthConfig.Connect()
	if err != nil {
		util.Log().Fatalf("Failed to open auth state store: %v", err)
	}
	auth, err := authorizer.New(store, util.Log().Component("authorizer"))
	if err != nil {
		util.Log().Fatalf("Failed to load authorizer state: %v", err)
	}

	srv := &server{
		params:    params,
		provers:   newRegistry[*ring.Prover]("prover", config.RegistryConfig.ProverSize),
		verifiers: newRegistry[*ring.Verifier]("verifier", config.RegistryConfig.VerifierSize),
		auth:      auth,
		svc:       service.New(config.ServiceConfig.Admin, util.Log().Component("service")),
		log:       zeroLogLogger,
	}

	api := &http.Server{
		Addr:    config.APIAddr,
		Handler: srv.router(),
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		util.Log().Infof("Starting vrf server at: %v", config.APIAddr)
		return api.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return api.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		util.Log().Fatalf("%s", err.Error())
	}
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.apiDocs).Methods(http.MethodGet)
	r.HandleFunc("/constant_points", instrument("constant_points", s.constantPoints)).Methods(http.MethodGet)
	r.HandleFunc("/compose_gamma_z", instrument("compose_gamma_z", s.composeGammaZ)).Methods(http.MethodPost)
	r.HandleFunc("/prover/create", instrument("prover_create", s.createProver)).Methods(http.MethodPost)
	r.HandleFunc("/prover/vrf_output", instrument("vrf_output", s.vrfOutput)).Methods(http.MethodPost)
	r.HandleFunc("/prover/ring_vrf_sign", instrument("ring_vrf_sign", s.ringVRFSign)).Methods(http.MethodPost)
	r.HandleFunc("/prover/ietf_vrf_sign", instrument("ietf_vrf_sign", s.ietfVRFSign)).Methods(http.MethodPost)
	r.HandleFunc("/verifier/create", instrument("verifier_create", s.createVerifier)).Methods(http.MethodPost)
	r.HandleFunc("/verifier/ring_vrf_verify", instrument("ring_vrf_verify", s.ringVRFVerify)).Methods(http.MethodPost)
	r.HandleFunc("/verifier/ring_vrf_verify_payload", instrument("ring_vrf_verify_payload", s.ringVRFVerifyPayload)).Methods(http.MethodPost)
	r.HandleFunc("/verifier/ietf_vrf_verify", instrument("ietf_vrf_verify", s.ietfVRFVerify)).Methods(http.MethodPost)
	r.HandleFunc("/authorizer/is_authorized", instrument("is_authorized", s.isAuthorized)).Methods(http.MethodPost)
	r.HandleFunc("/service/refine", instrument("service_refine", s.serviceRefine)).Methods(http.MethodPost)
	r.HandleFunc("/service/accumulate", instrument("service_accumulate", s.serviceAccumulate)).Methods(http.MethodPost)
	r.HandleFunc("/service/on_transfer", instrument("service_on_transfer", s.serviceOnTransfer)).Methods(http.MethodPost)
	r.HandleFunc("/service/state", instrument("service_state", s.serviceState)).Methods(http.MethodGet)
	return r
}
