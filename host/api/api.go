// Package api serves the bench rig over HTTP: a JSON control API under
// /api/ and a status page under /status/.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"ap1key/core"
	"ap1key/host/bench"
	"ap1key/host/config"
	"ap1key/protocol"
)

const csrfkey = "w2v1c8lq0hyk3s7nd5e4bfzr6m9agtjx"

// Rig is the bench functionality the server exposes
type Rig interface {
	NextTheme(ctx context.Context) error
	NextBrightness(ctx context.Context) error
	NextAnimationSpeed(ctx context.Context) error
	ThemeMode(ctx context.Context) error
	Toggle(ctx context.Context) error
	GetThemeID(ctx context.Context) error
	SetTheme(ctx context.Context, index uint8) error
	PushBluetoothTheme(ctx context.Context) error
	BluetoothPinMode(ctx context.Context) error

	SetBluetoothStatus(status core.BluetoothStatus)
	SetUSBReport(on bool)
	Snapshot() bench.Status
}

type Server struct {
	http *http.Server
	rig  Rig
}

// New builds the server. Access logs go to logger in the Apache format.
func New(addr string, rig Rig, logger io.Writer) *Server {
	s := &Server{
		http: &http.Server{Addr: addr},
		rig:  rig,
	}
	s.http.Handler = handlers.LoggingHandler(logger, s.router())
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.Methods("GET").Path("/").HandlerFunc(redirect)

	a := r.PathPrefix("/api").Subrouter()
	a.Methods("GET").Path("/status").HandlerFunc(s.status)
	a.Methods("PUT").Path("/bluetooth").HandlerFunc(s.setBluetooth)

	p := a.Methods("POST").Subrouter()
	p.HandleFunc("/theme/next", s.command(Rig.NextTheme))
	p.HandleFunc("/brightness/next", s.command(Rig.NextBrightness))
	p.HandleFunc("/speed/next", s.command(Rig.NextAnimationSpeed))
	p.HandleFunc("/theme/mode", s.command(Rig.ThemeMode))
	p.HandleFunc("/theme/toggle", s.command(Rig.Toggle))
	p.HandleFunc("/theme/id", s.command(Rig.GetThemeID))
	p.HandleFunc("/theme/{index:[0-9]+}", s.setTheme)
	p.HandleFunc("/bluetooth/theme", s.command(Rig.PushBluetoothTheme))
	p.HandleFunc("/bluetooth/pin", s.command(Rig.BluetoothPinMode))

	st := r.PathPrefix("/status").Subrouter()
	st.Methods("GET").Path("/").HandlerFunc(s.statusPage)
	st.Methods("POST").Path("/push").HandlerFunc(s.statusPush)
	st.Use(csrf.Protect([]byte(csrfkey), csrf.Secure(false)))

	return r
}

func (s *Server) Run() error {
	return s.http.ListenAndServe()
}

func (s *Server) Close() error {
	return s.http.Close()
}

func redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/status/", http.StatusMovedPermanently)
}

type result struct {
	OK bool `json:"ok"`
}

func (s *Server) command(cmd func(Rig, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cmd(s.rig, r.Context()); err != nil {
			respondError(w, err)
			return
		}
		json.NewEncoder(w).Encode(result{OK: true})
	}
}

func (s *Server) setTheme(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 8)
	if err != nil {
		respondError(w, ErrMalformedData)
		return
	}
	if err := s.rig.SetTheme(r.Context(), uint8(index)); err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result{OK: true})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.rig.Snapshot())
}

type bluetoothRequest struct {
	config.BluetoothConfig
	USBReport *bool `json:"usb_report"`
}

func (s *Server) setBluetooth(w http.ResponseWriter, r *http.Request) {
	var req bluetoothRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if err != nil {
		respondError(w, ErrMalformedData)
		return
	}

	if req.Mode == "" {
		req.Mode = core.BluetoothUnknown.String()
	}
	cfg := config.Config{Bluetooth: req.BluetoothConfig}
	status, err := cfg.BluetoothStatus()
	if err != nil {
		respondError(w, err)
		return
	}

	s.rig.SetBluetoothStatus(status)
	if req.USBReport != nil {
		s.rig.SetUSBReport(*req.USBReport)
	}
	json.NewEncoder(w).Encode(s.rig.Snapshot())
}

var ErrMalformedData = errors.New("malformed data")

func respondError(w http.ResponseWriter, err error) {
	type jsonError struct {
		Error string `json:"error"`
	}

	code := http.StatusBadRequest
	switch {
	case errors.Is(err, protocol.ErrLinkBusy), errors.Is(err, bench.ErrClosed):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(jsonError{
		Error: err.Error(),
	})
}
