package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jcooky/go-din"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/habiliai/inbox/auth"
	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/metrics"
	"github.com/habiliai/inbox/internal/mylog"
	"github.com/habiliai/inbox/thread"
)

const (
	HeaderNextCursorAt = "X-Next-Cursor-At"
	HeaderNextCursorID = "X-Next-Cursor-Id"

	maxBodyBytes = 1 << 20
)

type (
	Authenticator interface {
		Authenticate(r *http.Request) (*entity.User, error)
	}

	Handler struct {
		logger  *slog.Logger
		service thread.Service
		auth    Authenticator
		root    http.Handler
	}

	operationFunc func(w http.ResponseWriter, r *http.Request, body any) (any, error)
)

var (
	_ http.Handler  = (*Handler)(nil)
	_ Authenticator = (*auth.Authenticator)(nil)
)

func NewHandler(logger *slog.Logger, service thread.Service, authenticator Authenticator) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		auth:    authenticator,
	}

	router := mux.NewRouter()
	router.Use(instrument)

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.Handle("/threads", h.protect(OpListThreads, h.listThreads)).Methods(http.MethodGet)
	router.Handle("/threads", h.protect(OpCreateThread, h.createThread)).Methods(http.MethodPost)
	router.Handle("/threads/{thread_id:[0-9]+}", h.protect(OpRetrieveThread, h.retrieveThread)).Methods(http.MethodGet)
	router.Handle("/threads/{thread_id:[0-9]+}/messages", h.protect(OpListMessages, h.listMessages)).Methods(http.MethodGet)
	router.Handle("/threads/{thread_id:[0-9]+}/messages", h.protect(OpCreateMessage, h.createMessage)).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, errors.Wrapf(errors.ErrNotFound, "no route for %s", r.URL.Path))
	})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		router.ServeHTTP(w, r.WithContext(ctx))
	})

	h.root = newCORSHandler()(newRecoveryHandler(logger)(newLoggingHandler(logger)(inner)))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Warn("failed to write health response", mylog.Err(err))
	}
}

// protect authenticates the caller and runs fn with the body decoded per
// op's schema. The answer is written with the schema's success status.
func (h *Handler) protect(op Operation, fn operationFunc) http.Handler {
	schema := SchemaOf(op)

	serve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body any
		if schema.NewRequest != nil {
			body = schema.NewRequest()
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err := dec.Decode(body); err != nil {
				writeError(w, h.logger, errors.NewValidationError("non_field_errors", "malformed request body"))
				return
			}
		}

		resp, err := fn(w, r, body)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}

		writeJSON(w, h.logger, schema.Status, resp)
	})

	return h.authenticate(guardCache(serve))
}

func (h *Handler) listThreads(w http.ResponseWriter, r *http.Request, _ any) (any, error) {
	before, pageSize, err := parseThreadQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	threads, next, err := h.service.ListThreads(r.Context(), auth.UserID(r.Context()), before, pageSize)
	if err != nil {
		return nil, err
	}

	if next != nil {
		w.Header().Set(HeaderNextCursorAt, entity.Timestamp(next.At).Format(time.RFC3339Nano))
		w.Header().Set(HeaderNextCursorID, strconv.FormatUint(uint64(next.ID), 10))
	}

	return newThreads(threads), nil
}

func (h *Handler) createThread(_ http.ResponseWriter, r *http.Request, body any) (any, error) {
	req := body.(*CreateThreadRequest)

	t, err := h.service.CreateThread(r.Context(), auth.UserID(r.Context()), req.ToUsers, req.Content)
	if err != nil {
		return nil, err
	}

	metrics.ThreadsCreated.Inc()
	metrics.MessagesSent.Inc()

	return newThread(*t), nil
}

func (h *Handler) retrieveThread(_ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	threadId, err := threadIdFromPath(r)
	if err != nil {
		return nil, err
	}

	t, err := h.service.GetThread(r.Context(), auth.UserID(r.Context()), threadId)
	if err != nil {
		return nil, err
	}

	return newThread(*t), nil
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request, _ any) (any, error) {
	threadId, err := threadIdFromPath(r)
	if err != nil {
		return nil, err
	}

	order, cursor, limit, err := parseMessageQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	messages, next, err := h.service.ListMessages(r.Context(), auth.UserID(r.Context()), threadId, order, cursor, limit)
	if err != nil {
		return nil, err
	}

	if next != 0 {
		w.Header().Set(HeaderNextCursorID, strconv.FormatUint(uint64(next), 10))
	}

	return newMessages(messages), nil
}

func (h *Handler) createMessage(_ http.ResponseWriter, r *http.Request, body any) (any, error) {
	req := body.(*CreateMessageRequest)

	threadId, err := threadIdFromPath(r)
	if err != nil {
		return nil, err
	}

	msg, err := h.service.AppendMessage(r.Context(), threadId, auth.UserID(r.Context()), req.Content)
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()

	return newMessage(*msg), nil
}

func threadIdFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["thread_id"], 10, 32)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(errors.ErrNotFound, "thread not found")
	}
	return uint(id), nil
}

func parseThreadQuery(q url.Values) (*thread.Cursor, int, error) {
	verr := &errors.ValidationError{}

	var before *thread.Cursor
	if v := q.Get("latest_message_at_before"); v != "" {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			verr.Add("latest_message_at_before", "must be an RFC 3339 timestamp")
		} else {
			before = &thread.Cursor{At: at}
		}
	}
	if v := q.Get("before_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		switch {
		case err != nil || id == 0:
			verr.Add("before_id", "must be a positive integer")
		case q.Get("latest_message_at_before") == "":
			verr.Add("before_id", "requires latest_message_at_before")
		case before != nil:
			before.ID = uint(id)
		}
	}

	pageSize, ok := parsePositiveInt(q.Get("page_size"))
	if !ok {
		verr.Add("page_size", "must be a positive integer")
	}

	if err := verr.OrNil(); err != nil {
		return nil, 0, err
	}
	return before, pageSize, nil
}

func parseMessageQuery(q url.Values) (string, uint, int, error) {
	verr := &errors.ValidationError{}

	order := strings.ToUpper(q.Get("order"))
	if order != "" && order != "ASC" && order != "DESC" {
		verr.Add("order", "must be asc or desc")
	}

	var cursor uint
	if v := q.Get("cursor"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			verr.Add("cursor", "must be a message id")
		}
		cursor = uint(id)
	}

	limit, ok := parsePositiveInt(q.Get("limit"))
	if !ok {
		verr.Add("limit", "must be a positive integer")
	}

	if err := verr.OrNil(); err != nil {
		return "", 0, 0, err
	}
	return order, cursor, limit, nil
}

// parsePositiveInt reads an optional positive integer; empty yields 0.
func parsePositiveInt(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func init() {
	din.RegisterT(func(c *din.Container) (*Handler, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}
		authenticator, err := din.GetT[*auth.Authenticator](c)
		if err != nil {
			return nil, err
		}

		return NewHandler(logger, din.MustGetT[thread.Service](c), authenticator), nil
	})
}
