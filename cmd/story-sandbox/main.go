// Command story-sandbox serves the in-memory mock backends over the gateway
// HTTP wire format, so HTTP-mode clients can be exercised without a chain.
// Latency and failure injection make retry and error paths reproducible.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/storyprotocol/story-sdk-go/internal/devseed"
	"github.com/storyprotocol/story-sdk-go/internal/storyapi"
	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
	ipaccountmock "github.com/storyprotocol/story-sdk-go/pkg/ipaccount/mock"
	"github.com/storyprotocol/story-sdk-go/pkg/license"
	licensemock "github.com/storyprotocol/story-sdk-go/pkg/license/mock"
)

type cli struct {
	Addr        string        `default:":8787" help:"Listen address."`
	TermsSeed   string        `name:"terms-seed" type:"existingfile" optional:"" help:"JSON seed file for the license terms registry."`
	AccountSeed string        `name:"account-seed" type:"existingfile" optional:"" help:"JSON seed file for IP account nonces."`
	Latency     time.Duration `default:"0" help:"Artificial latency injected per request."`
	FailRate    float64       `name:"fail-rate" default:"0" help:"Probability of injecting a failure per request."`
	FailCode    int           `name:"fail-code" default:"500" help:"HTTP status used for injected failures."`
	LogLevel    string        `name:"log-level" default:"info" help:"Log level (trace, debug, info, warn, error)."`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("story-sandbox"),
		kong.Description("Local Story gateway stand-in backed by in-memory mocks."),
	)

	level, err := zerolog.ParseLevel(args.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	accountMock := ipaccountmock.New()
	if args.AccountSeed != "" {
		entries, err := devseed.LoadIPAccountSeed(args.AccountSeed)
		if err != nil {
			log.Fatal().Err(err).Msg("load account seed")
		}
		accountMock.Seed(entries)
		log.Info().Int("accounts", len(entries)).Msg("account seed applied")
	}

	licenseMock := licensemock.New()
	if args.TermsSeed != "" {
		entries, err := devseed.LoadLicenseTermsSeed(args.TermsSeed)
		if err != nil {
			log.Fatal().Err(err).Msg("load terms seed")
		}
		if err := licenseMock.Seed(entries); err != nil {
			log.Fatal().Err(err).Msg("apply terms seed")
		}
		log.Info().Int("terms", len(entries)).Msg("terms seed applied")
	}

	srv := &sandbox{
		accounts: accountMock,
		licenses: licenseMock,
		log:      log,
		latency:  args.Latency,
		failRate: args.FailRate,
		failCode: args.FailCode,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ip_account/execute", srv.handle(srv.execute))
	mux.HandleFunc("/ip_account/execute_with_sig", srv.handle(srv.executeWithSig))
	mux.HandleFunc("/ip_account/nonce", srv.handle(srv.nonce))
	mux.HandleFunc("/license/register_non_com_social_remixing_pil", srv.handle(srv.registerNonCom))
	mux.HandleFunc("/license/register_commercial_use_pil", srv.handle(srv.registerCommercialUse))
	mux.HandleFunc("/license/register_commercial_remix_pil", srv.handle(srv.registerCommercialRemix))
	mux.HandleFunc("/license/attach", srv.handle(srv.attach))
	mux.HandleFunc("/license/mint", srv.handle(srv.mint))
	mux.HandleFunc("/license/terms", srv.handle(srv.terms))

	host := args.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	log.Info().Str("addr", args.Addr).Msg("story-sandbox listening")
	fmt.Println()
	fmt.Println("export STORY_RUNTIME_MODE=http")
	fmt.Printf("export STORY_API_URL=http://%s\n", host)
	fmt.Println()

	server := &http.Server{Addr: args.Addr, Handler: mux}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

type sandbox struct {
	accounts *ipaccountmock.Mock
	licenses *licensemock.Mock
	log      zerolog.Logger
	latency  time.Duration
	failRate float64
	failCode int
}

func (s *sandbox) handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		if s.failRate > 0 && rand.Float64() < s.failRate {
			writeError(w, s.failCode, "failure injected")
			return
		}
		next(w, r)
	}
}

type executeWire struct {
	IPID           string `json:"ipId"`
	To             string `json:"to"`
	Value          string `json:"value"`
	AccountAddress string `json:"accountAddress"`
	Data           string `json:"data"`
}

func (s *sandbox) execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload executeWire
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	value, err := storyapi.ParseOptionalBig(payload.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.accounts.Execute(r.Context(), &ipaccount.ExecuteRequest{
		IPID:           payload.IPID,
		To:             payload.To,
		Value:          value,
		AccountAddress: payload.AccountAddress,
		Data:           payload.Data,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, map[string]string{"txHash": resp.TxHash})
}

type executeWithSigWire struct {
	IPID      string `json:"ipId"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Data      string `json:"data"`
	Signer    string `json:"signer"`
	Deadline  string `json:"deadline"`
	Signature string `json:"signature"`
}

func (s *sandbox) executeWithSig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload executeWithSigWire
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	value, err := storyapi.ParseOptionalBig(payload.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deadline, err := storyapi.ParseOptionalBig(payload.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.accounts.ExecuteWithSig(r.Context(), &ipaccount.ExecuteWithSigRequest{
		IPID:      payload.IPID,
		To:        payload.To,
		Value:     value,
		Data:      payload.Data,
		Signer:    payload.Signer,
		Deadline:  deadline,
		Signature: payload.Signature,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, map[string]string{"txHash": resp.TxHash})
}

func (s *sandbox) nonce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ipID := r.URL.Query().Get("ip_id")
	if ipID == "" {
		writeError(w, http.StatusBadRequest, "missing ip_id parameter")
		return
	}
	resp, err := s.accounts.GetIPAccountNonce(r.Context(), ipID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, map[string]string{
		"ipId":  resp.IPID,
		"nonce": storyapi.FormatBig(resp.Nonce),
	})
}

type registerWire struct {
	MintingFee         string `json:"mintingFee"`
	CommercialRevShare uint32 `json:"commercialRevShare"`
	Currency           string `json:"currency"`
}

func (s *sandbox) registerNonCom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp, err := s.licenses.RegisterNonComSocialRemixingPIL(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeRegisterResult(w, resp)
}

func (s *sandbox) registerCommercialUse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload registerWire
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fee, err := storyapi.ParseOptionalBig(payload.MintingFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.licenses.RegisterCommercialUsePIL(r.Context(), &license.RegisterCommercialUsePILRequest{
		MintingFee: fee,
		Currency:   payload.Currency,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeRegisterResult(w, resp)
}

func (s *sandbox) registerCommercialRemix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload registerWire
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fee, err := storyapi.ParseOptionalBig(payload.MintingFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.licenses.RegisterCommercialRemixPIL(r.Context(), &license.RegisterCommercialRemixPILRequest{
		MintingFee:         fee,
		CommercialRevShare: payload.CommercialRevShare,
		Currency:           payload.Currency,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeRegisterResult(w, resp)
}

func (s *sandbox) attach(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		IPID           string `json:"ipId"`
		LicenseTermsID string `json:"licenseTermsId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	termsID, err := storyapi.ParseOptionalBig(payload.LicenseTermsID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.licenses.AttachLicenseTerms(r.Context(), &license.AttachLicenseTermsRequest{
		IPID:           payload.IPID,
		LicenseTermsID: termsID,
	})
	if err != nil {
		writeError(w, statusForLicenseError(err), err.Error())
		return
	}
	writeResult(w, map[string]string{"txHash": resp.TxHash})
}

func (s *sandbox) mint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		LicensorIPID   string `json:"licensorIpId"`
		LicenseTermsID string `json:"licenseTermsId"`
		Amount         string `json:"amount"`
		Receiver       string `json:"receiver"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	termsID, err := storyapi.ParseOptionalBig(payload.LicenseTermsID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := storyapi.ParseOptionalBig(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.licenses.MintLicenseTokens(r.Context(), &license.MintLicenseTokensRequest{
		LicensorIPID:   payload.LicensorIPID,
		LicenseTermsID: termsID,
		Amount:         amount,
		Receiver:       payload.Receiver,
	})
	if err != nil {
		writeError(w, statusForLicenseError(err), err.Error())
		return
	}
	tokenIDs := make([]string, 0, len(resp.LicenseTokenIDs))
	for _, id := range resp.LicenseTokenIDs {
		tokenIDs = append(tokenIDs, storyapi.FormatBig(id))
	}
	writeResult(w, map[string]any{
		"txHash":          resp.TxHash,
		"licenseTokenIds": tokenIDs,
	})
}

func (s *sandbox) terms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := storyapi.ParseOptionalBig(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	terms, err := s.licenses.GetLicenseTerms(r.Context(), id)
	if err != nil {
		writeError(w, statusForLicenseError(err), err.Error())
		return
	}
	writeResult(w, terms)
}

func statusForLicenseError(err error) int {
	switch {
	case license.IsTermsNotFound(err):
		return http.StatusNotFound
	case license.IsAlreadyAttached(err), license.IsNotAttached(err):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeRegisterResult(w http.ResponseWriter, resp *license.RegisterPILResponse) {
	writeResult(w, map[string]string{
		"txHash":         resp.TxHash,
		"licenseTermsId": storyapi.FormatBig(resp.LicenseTermsID),
	})
}

func writeResult(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"result": payload}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
}
