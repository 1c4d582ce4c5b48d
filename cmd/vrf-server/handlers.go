//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package main

import (
	"net/http"

	"filippo.io/edwards25519"
	metrics "github.com/hashicorp/go-metrics"
	"github.com/rs/zerolog"

	"github.com/jamlabs/ringvrf/authorizer"
	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
	"github.com/jamlabs/ringvrf/jam"
	"github.com/jamlabs/ringvrf/ring"
	"github.com/jamlabs/ringvrf/service"
	"github.com/jamlabs/ringvrf/tickets"
)

type server struct {
	params    *ringproof.Params
	provers   *registry[*ring.Prover]
	verifiers *registry[*ring.Verifier]
	auth      *authorizer.Authorizer
	svc       *service.Service
	log       zerolog.Logger
}

type gammaZRequest struct {
	PublicKeys []string `json:"public_keys"`
}

type gammaZResponse struct {
	GammaZ string `json:"gamma_z"`
}

func (s *server) composeGammaZ(rw http.ResponseWriter, req *http.Request) {
	var body gammaZRequest
	if !readJSON(rw, req, &body) {
		return
	}
	ringSet, err := ring.DecodeRing(body.PublicKeys)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	vk, err := s.params.VerifierKey(ringSet.Publics())
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	commitment := vk.Commitment()
	writeJSON(rw, gammaZResponse{GammaZ: encodeHex(commitment[:])})
}

type createProverRequest struct {
	PublicKeys  []string `json:"public_keys"`
	ProverIndex int      `json:"prover_index"`
}

type createProverResponse struct {
	ProverID  string `json:"prover_id"`
	PublicKey string `json:"public_key"`
}

func (s *server) createProver(rw http.ResponseWriter, req *http.Request) {
	var body createProverRequest
	if !readJSON(rw, req, &body) {
		return
	}
	ringSet, err := ring.DecodeRing(body.PublicKeys)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	prover, err := ring.NewProver(s.params, ringSet, body.ProverIndex)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	bound := prover.Public().Bytes()
	writeJSON(rw, createProverResponse{
		ProverID:  s.provers.add(prover),
		PublicKey: encodeHex(bound[:]),
	})
}

type vrfOutputRequest struct {
	ProverID     string `json:"prover_id"`
	VRFInputData string `json:"vrf_input_data"`
}

type vrfOutputResponse struct {
	VRFOutputHash string `json:"vrf_output_hash"`
}

func (s *server) vrfOutput(rw http.ResponseWriter, req *http.Request) {
	var body vrfOutputRequest
	if !readJSON(rw, req, &body) {
		return
	}
	input, err := decodeHex(body.VRFInputData)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid vrf_input_data hex")
		return
	}
	prover, ok := s.provers.get(body.ProverID)
	if !ok {
		errorResponse(rw, http.StatusNotFound, "unknown prover handle")
		return
	}
	hash := prover.VRFOutput(input)
	writeJSON(rw, vrfOutputResponse{VRFOutputHash: encodeHex(hash[:])})
}

type signRequest struct {
	ProverID     string `json:"prover_id"`
	VRFInputData string `json:"vrf_input_data"`
	AuxData      string `json:"aux_data"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

func (s *server) ringVRFSign(rw http.ResponseWriter, req *http.Request) {
	s.sign(rw, req, (*ring.Prover).RingVRFSign)
}

func (s *server) ietfVRFSign(rw http.ResponseWriter, req *http.Request) {
	s.sign(rw, req, (*ring.Prover).IetfVRFSign)
}

func (s *server) sign(rw http.ResponseWriter, req *http.Request, sign func(*ring.Prover, []byte, []byte) ([]byte, error)) {
	var body signRequest
	if !readJSON(rw, req, &body) {
		return
	}
	input, err := decodeHex(body.VRFInputData)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid vrf_input_data hex")
		return
	}
	aux, err := decodeHex(body.AuxData)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid aux_data hex")
		return
	}
	prover, ok := s.provers.get(body.ProverID)
	if !ok {
		errorResponse(rw, http.StatusNotFound, "unknown prover handle")
		return
	}
	sig, err := sign(prover, input, aux)
	if err != nil {
		errorResponse(rw, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(rw, signResponse{Signature: encodeHex(sig)})
}

type createVerifierRequest struct {
	PublicKeys []string `json:"public_keys"`
}

type createVerifierResponse struct {
	VerifierID string `json:"verifier_id"`
	Commitment string `json:"commitment"`
}

func (s *server) createVerifier(rw http.ResponseWriter, req *http.Request) {
	var body createVerifierRequest
	if !readJSON(rw, req, &body) {
		return
	}
	ringSet, err := ring.DecodeRing(body.PublicKeys)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	verifier, err := ring.NewVerifier(s.params, ringSet)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	commitment := verifier.Commitment()
	writeJSON(rw, createVerifierResponse{
		VerifierID: s.verifiers.add(verifier),
		Commitment: encodeHex(commitment[:]),
	})
}

type ringVerifyRequest struct {
	VerifierID   string `json:"verifier_id"`
	VRFInputData string `json:"vrf_input_data"`
	AuxData      string `json:"aux_data"`
	Signature    string `json:"signature"`
}

type verifyResponse struct {
	Verified      bool    `json:"verified"`
	VRFOutputHash *string `json:"vrf_output_hash"`
}

func (s *server) ringVRFVerify(rw http.ResponseWriter, req *http.Request) {
	var body ringVerifyRequest
	if !readJSON(rw, req, &body) {
		return
	}
	verifier, input, aux, sig, ok := s.verifyArgs(rw, body.VerifierID, body.VRFInputData, body.AuxData, body.Signature)
	if !ok {
		return
	}
	hash, err := verifier.RingVRFVerify(input, aux, sig)
	writeVerifyResult(rw, "ring_vrf_verify", hash, err)
}

type ietfVerifyRequest struct {
	VerifierID     string `json:"verifier_id"`
	VRFInputData   string `json:"vrf_input_data"`
	AuxData        string `json:"aux_data"`
	Signature      string `json:"signature"`
	SignerKeyIndex int    `json:"signer_key_index"`
}

func (s *server) ietfVRFVerify(rw http.ResponseWriter, req *http.Request) {
	var body ietfVerifyRequest
	if !readJSON(rw, req, &body) {
		return
	}
	verifier, input, aux, sig, ok := s.verifyArgs(rw, body.VerifierID, body.VRFInputData, body.AuxData, body.Signature)
	if !ok {
		return
	}
	hash, err := verifier.IetfVRFVerify(input, aux, sig, body.SignerKeyIndex)
	writeVerifyResult(rw, "ietf_vrf_verify", hash, err)
}

// verifyArgs decodes the shared arguments of the two verify endpoints.
// On failure it writes the error response and reports !ok.
func (s *server) verifyArgs(rw http.ResponseWriter, verifierID, inputHex, auxHex, sigHex string) (verifier *ring.Verifier, input, aux, sig []byte, ok bool) {
	var err error
	if input, err = decodeHex(inputHex); err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid vrf_input_data hex")
		return nil, nil, nil, nil, false
	}
	if aux, err = decodeHex(auxHex); err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid aux_data hex")
		return nil, nil, nil, nil, false
	}
	if sig, err = decodeHex(sigHex); err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid signature hex")
		return nil, nil, nil, nil, false
	}
	verifier, found := s.verifiers.get(verifierID)
	if !found {
		errorResponse(rw, http.StatusNotFound, "unknown verifier handle")
		return nil, nil, nil, nil, false
	}
	return verifier, input, aux, sig, true
}

// writeVerifyResult reports a verification outcome. A failed check is a
// 200 with verified=false, never an error status.
func writeVerifyResult(rw http.ResponseWriter, endpoint string, hash [32]byte, err error) {
	metrics.IncrCounterWithLabels([]string{"verify"}, 1, []metrics.Label{endpointLabel(endpoint), successLabel(err == nil)})
	if err != nil {
		writeJSON(rw, verifyResponse{Verified: false})
		return
	}
	encoded := encodeHex(hash[:])
	writeJSON(rw, verifyResponse{Verified: true, VRFOutputHash: &encoded})
}

type verifyPayloadRequest struct {
	GammaZ    string              `json:"gamma_z"`
	RingSet   []string            `json:"ring_set"`
	Eta2Prime string              `json:"eta2_prime"`
	Extrinsic []tickets.Extrinsic `json:"extrinsic"`
}

type verifyPayloadResponse struct {
	Results []tickets.Result `json:"results"`
}

func (s *server) ringVRFVerifyPayload(rw http.ResponseWriter, req *http.Request) {
	var body verifyPayloadRequest
	if !readJSON(rw, req, &body) {
		return
	}
	gammaZ, err := decodeHex(body.GammaZ)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid gamma_z hex")
		return
	}
	ringSet, err := ring.DecodeRing(body.RingSet)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	eta2, err := decodeHex(body.Eta2Prime)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid eta2_prime hex")
		return
	}

	results, err := tickets.VerifyBatch(s.params, gammaZ, ringSet, eta2, body.Extrinsic)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(rw, verifyPayloadResponse{Results: results})
}

type workItemBody struct {
	Payload string `json:"payload"`
}

type isAuthorizedRequest struct {
	Param   string `json:"param"`
	Package struct {
		Items []workItemBody `json:"items"`
	} `json:"package"`
}

type isAuthorizedResponse struct {
	Output string `json:"output"`
}

func (s *server) isAuthorized(rw http.ResponseWriter, req *http.Request) {
	var body isAuthorizedRequest
	if !readJSON(rw, req, &body) {
		return
	}
	param, err := decodeHex(body.Param)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid param hex")
		return
	}
	var pkg jam.WorkPackage
	for _, item := range body.Package.Items {
		payload, err := decodeHex(item.Payload)
		if err != nil {
			errorResponse(rw, http.StatusBadRequest, "invalid payload hex")
			return
		}
		pkg.Items = append(pkg.Items, jam.WorkItem{Payload: payload})
	}
	writeJSON(rw, isAuthorizedResponse{Output: encodeHex(s.auth.IsAuthorized(param, pkg))})
}

type refineRequest struct {
	Payload string `json:"payload"`
}

type refineResponse struct {
	Output string `json:"output"`
}

func (s *server) serviceRefine(rw http.ResponseWriter, req *http.Request) {
	var body refineRequest
	if !readJSON(rw, req, &body) {
		return
	}
	payload, err := decodeHex(body.Payload)
	if err != nil {
		errorResponse(rw, http.StatusBadRequest, "invalid payload hex")
		return
	}
	writeJSON(rw, refineResponse{Output: encodeHex(s.svc.Refine(payload))})
}

type accumulateItemBody struct {
	Payload    string `json:"payload"`
	AuthOutput string `json:"auth_output"`
	OK         bool   `json:"ok"`
}

type accumulateRequest struct {
	Items []accumulateItemBody `json:"items"`
}

func (s *server) serviceAccumulate(rw http.ResponseWriter, req *http.Request) {
	var body accumulateRequest
	if !readJSON(rw, req, &body) {
		return
	}
	items := make([]jam.AccumulateItem, 0, len(body.Items))
	for _, item := range body.Items {
		payload, err := decodeHex(item.Payload)
		if err != nil {
			errorResponse(rw, http.StatusBadRequest, "invalid payload hex")
			return
		}
		authOutput, err := decodeHex(item.AuthOutput)
		if err != nil {
			errorResponse(rw, http.StatusBadRequest, "invalid auth_output hex")
			return
		}
		items = append(items, jam.AccumulateItem{Payload: payload, AuthOutput: authOutput, OK: item.OK})
	}
	s.svc.Accumulate(items)
	writeServiceState(rw, s.svc.State())
}

type transferBody struct {
	Source uint64 `json:"source"`
	Memo   string `json:"memo"`
}

type onTransferRequest struct {
	Transfers []transferBody `json:"transfers"`
}

func (s *server) serviceOnTransfer(rw http.ResponseWriter, req *http.Request) {
	var body onTransferRequest
	if !readJSON(rw, req, &body) {
		return
	}
	transfers := make([]jam.TransferRecord, 0, len(body.Transfers))
	for _, transfer := range body.Transfers {
		memo, err := decodeHex(transfer.Memo)
		if err != nil {
			errorResponse(rw, http.StatusBadRequest, "invalid memo hex")
			return
		}
		transfers = append(transfers, jam.TransferRecord{Source: transfer.Source, Memo: memo})
	}
	s.svc.OnTransfer(transfers)
	writeServiceState(rw, s.svc.State())
}

type serviceStateResponse struct {
	Counter         uint64            `json:"counter"`
	LastPayloadHash string            `json:"last_payload_hash"`
	Admin           uint64            `json:"admin"`
	Nonces          map[string]uint64 `json:"nonces"`
}

func (s *server) serviceState(rw http.ResponseWriter, req *http.Request) {
	writeServiceState(rw, s.svc.State())
}

func writeServiceState(rw http.ResponseWriter, state service.State) {
	nonces := make(map[string]uint64, len(state.Nonces))
	for key, nonce := range state.Nonces {
		nonces[encodeHex(key[:])] = nonce
	}
	writeJSON(rw, serviceStateResponse{
		Counter:         state.Counter,
		LastPayloadHash: encodeHex(state.LastPayloadHash[:]),
		Admin:           state.Admin,
		Nonces:          nonces,
	})
}

type pointInfo struct {
	Name       string `json:"name"`
	Compressed string `json:"compressed"`
}

type constantPointsResponse struct {
	Points    []pointInfo `json:"points"`
	SRSDigest string      `json:"srs_digest"`
}

func (s *server) constantPoints(rw http.ResponseWriter, req *http.Request) {
	padding := vrfed.PaddingPoint().Bytes()
	digest := s.params.SRSDigest()
	writeJSON(rw, constantPointsResponse{
		Points: []pointInfo{
			{Name: "Group Base", Compressed: encodeHex(edwards25519.NewGeneratorPoint().Bytes())},
			{Name: "Ring Padding", Compressed: encodeHex(padding[:])},
		},
		SRSDigest: encodeHex(digest[:]),
	})
}

type apiEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type apiDocResponse struct {
	Endpoints []apiEndpoint `json:"endpoints"`
}

func (s *server) apiDocs(rw http.ResponseWriter, req *http.Request) {
	writeJSON(rw, apiDocResponse{Endpoints: []apiEndpoint{
		{Method: "GET", Path: "/", Description: "API documentation"},
		{Method: "GET", Path: "/constant_points", Description: "Constant curve points and SRS digest"},
		{Method: "POST", Path: "/compose_gamma_z", Description: "Compose gamma_z (ring commitment) from public keys"},
		{Method: "POST", Path: "/prover/create", Description: "Create a new prover instance with a ring of public keys"},
		{Method: "POST", Path: "/prover/vrf_output", Description: "Generate VRF output hash for given input data"},
		{Method: "POST", Path: "/prover/ring_vrf_sign", Description: "Create anonymous VRF signature (ring signature)"},
		{Method: "POST", Path: "/prover/ietf_vrf_sign", Description: "Create non-anonymous VRF signature (IETF standard)"},
		{Method: "POST", Path: "/verifier/create", Description: "Create a new verifier instance with a ring of public keys"},
		{Method: "POST", Path: "/verifier/ring_vrf_verify", Description: "Verify anonymous VRF signature (ring signature)"},
		{Method: "POST", Path: "/verifier/ring_vrf_verify_payload", Description: "Verify a ticket batch against gamma_z, ring_set and eta2_prime"},
		{Method: "POST", Path: "/verifier/ietf_vrf_verify", Description: "Verify non-anonymous VRF signature (IETF standard)"},
		{Method: "POST", Path: "/authorizer/is_authorized", Description: "Validate work-package auth credentials"},
		{Method: "POST", Path: "/service/refine", Description: "Refine a work payload"},
		{Method: "POST", Path: "/service/accumulate", Description: "Accumulate work results into service state"},
		{Method: "POST", Path: "/service/on_transfer", Description: "Apply service commands carried by transfers"},
		{Method: "GET", Path: "/service/state", Description: "Current service state"},
	}})
}
