package web

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/instruction-server/pkg/common"
	"github.com/code-payments/instruction-server/pkg/metrics"
	"github.com/code-payments/instruction-server/pkg/solana/system"
	"github.com/code-payments/instruction-server/pkg/solana/token"
)

const (
	healthPath            = "/health"
	keypairPath           = "/keypair"
	createTokenPath       = "/token/create"
	mintTokenPath         = "/token/mint"
	associatedAccountPath = "/token/associated"
	signMessagePath       = "/message/sign"
	verifyMessagePath     = "/message/verify"
	sendSolPath           = "/send/sol"
	sendTokenPath         = "/send/token"

	RequestIdHeaderName = "x-request-id"

	metricsStructName = "web.server"
)

var errInternal = errors.New("internal server error")

type requestIdContextKey struct{}

type Server struct {
	log  *logrus.Entry
	conf *conf
}

func NewInstructionServer(configProvider ConfigProvider) *Server {
	return &Server{
		log:  logrus.StandardLogger().WithField("type", "web/server"),
		conf: configProvider(),
	}
}

func (s *Server) healthHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			if r.Method != http.MethodGet {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpGetExpected)
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(healthView{Status: "OK"})
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) keypairHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			if s.conf.disableKeypairEndpoint.Get(ctx) {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("keypair generation is disabled"))
			}

			account, err := common.NewRandomAccount()
			if err != nil {
				log.WithError(err).Warn("failure generating keypair")
				return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal)
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(toKeypairView(account))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) createTokenHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newCreateTokenRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			tracer := metrics.TraceMethodCall(ctx, metricsStructName, "token.InitializeMint")
			ix, err := token.InitializeMint(
				model.mint.PublicKey().ToBytes(),
				model.mintAuthority.PublicKey().ToBytes(),
				nil,
				model.decimals,
			)
			tracer.OnError(err)
			tracer.End()
			if err != nil {
				log.WithError(err).Warn("failure building initialize mint instruction")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(newBuilderError(err))
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(toCreateTokenView(ix))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) mintTokenHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newMintTokenRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			tracer := metrics.TraceMethodCall(ctx, metricsStructName, "token.MintTo")
			ix, err := token.MintTo(
				model.mint.PublicKey().ToBytes(),
				model.destination.PublicKey().ToBytes(),
				model.authority.PublicKey().ToBytes(),
				model.amount,
			)
			tracer.OnError(err)
			tracer.End()
			if err != nil {
				log.WithError(err).Warn("failure building mint to instruction")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(newBuilderError(err))
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(toMintTokenView(ix))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) associatedAccountHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newAssociatedAccountRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			// program derived owners must be opted into
			if !model.allowOwnerOffCurve && !model.owner.IsOnCurve() {
				log.Debug("owner is off curve")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(ErrOwnerOffCurve)
			}

			ata, bump, err := model.owner.ToAssociatedTokenAccountAndBump(model.mint)
			if err != nil {
				log.WithError(err).Warn("failure deriving associated token account")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.Errorf("Failed to derive address: %s", err.Error()))
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(associatedAccountView{
				Address: ata.PublicKey().ToBase58(),
				Bump:    bump,
			})
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) signMessageHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newSignMessageRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			signature, err := model.signer.Sign(model.message)
			if err != nil {
				log.WithError(err).Warn("failure signing message")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(ErrInvalidSecret)
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(toSignMessageView(model.signer, model.message, signature))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) verifyMessageHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newVerifyMessageRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(verifyMessageView{
				Valid:   common.Verify(model.publicKey.PublicKey(), model.message, model.signature),
				Message: model.rawMessage,
				Pubkey:  model.rawPublicKey,
			})
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) sendSolHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newSendSolRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			tracer := metrics.TraceMethodCall(ctx, metricsStructName, "system.Transfer")
			ix := system.Transfer(
				model.from.PublicKey().ToBytes(),
				model.to.PublicKey().ToBytes(),
				model.lamports,
			)
			tracer.End()

			return http.StatusOK, NewGenericApiSuccessResponseBody(toSendSolView(ix))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) sendTokenHandler(path string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.requestLog(r, path)

		statusCode, body := func() (int, GenericApiResponseBody) {
			ctx := r.Context()

			if r.Method != http.MethodPost {
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(errHttpPostExpected)
			}

			model, err := newSendTokenRequestFromHttpContext(r, s.maxBodySize(ctx))
			if err != nil {
				log.WithError(err).Debug("invalid request")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
			}

			tracer := metrics.TraceMethodCall(ctx, metricsStructName, "token.Transfer")
			tracer.AddAttribute("mint", model.mint.PublicKey().ToBase58())
			ix, err := token.Transfer(
				model.source.PublicKey().ToBytes(),
				model.destination.PublicKey().ToBytes(),
				model.owner.PublicKey().ToBytes(),
				model.amount,
			)
			tracer.OnError(err)
			tracer.End()
			if err != nil {
				log.WithError(err).Warn("failure building token transfer instruction")
				return http.StatusBadRequest, NewGenericApiFailureResponseBody(newBuilderError(err))
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(toSendTokenView(ix))
		}()

		s.writeResponse(r.Context(), w, log, path, statusCode, body)
	}
}

func (s *Server) GetHandlers() map[string]http.HandlerFunc {
	handlers := map[string]http.HandlerFunc{
		healthPath:            s.healthHandler(healthPath),
		keypairPath:           s.keypairHandler(keypairPath),
		createTokenPath:       s.createTokenHandler(createTokenPath),
		mintTokenPath:         s.mintTokenHandler(mintTokenPath),
		associatedAccountPath: s.associatedAccountHandler(associatedAccountPath),
		signMessagePath:       s.signMessageHandler(signMessagePath),
		verifyMessagePath:     s.verifyMessageHandler(verifyMessagePath),
		sendSolPath:           s.sendSolHandler(sendSolPath),
		sendTokenPath:         s.sendTokenHandler(sendTokenPath),
	}

	for path, handler := range handlers {
		handlers[path] = s.withRequestId(s.withLatency(path, s.withPanicRecovery(path, handler)))
	}
	return handlers
}

// withRequestId tags the request with the caller's x-request-id, or a fresh
// one, and echoes it on the response
func (s *Server) withRequestId(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeaderName)
		if len(requestId) == 0 {
			requestId = uuid.NewString()
		}

		w.Header().Set(RequestIdHeaderName, requestId)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIdContextKey{}, requestId)))
	}
}

func (s *Server) withLatency(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.RecordDuration(r.Context(), fmt.Sprintf("InstructionServer%s/latency", path), time.Since(start))
	}
}

func (s *Server) withPanicRecovery(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log := s.requestLog(r, path)
				log.WithError(fmt.Errorf("%v", recovered)).Error("recovered from handler panic")
				metrics.RecordEvent(r.Context(), "InstructionServerPanic", map[string]any{
					"path": path,
				})
				s.writeResponse(r.Context(), w, log, path, http.StatusInternalServerError, NewGenericApiFailureResponseBody(errInternal))
			}
		}()

		next(w, r)
	}
}

func (s *Server) requestLog(r *http.Request, path string) *logrus.Entry {
	log := s.log.WithContext(r.Context()).WithField("path", path)
	if requestId, ok := r.Context().Value(requestIdContextKey{}).(string); ok {
		log = log.WithField("request_id", requestId)
	}
	return log
}

func (s *Server) writeResponse(ctx context.Context, w http.ResponseWriter, log *logrus.Entry, path string, statusCode int, body GenericApiResponseBody) {
	outcome := "success"
	if !body.IsSuccess() {
		outcome = "failure"
	}
	metrics.RecordCount(ctx, fmt.Sprintf("InstructionServer%s/%s", path, outcome), 1)

	writeResponse(w, log, statusCode, body)
}

func (s *Server) maxBodySize(ctx context.Context) int64 {
	maxBodySize := s.conf.maxRequestBodySize.Get(ctx)
	if maxBodySize == 0 || maxBodySize > math.MaxInt64-1 {
		return defaultMaxRequestBodySize
	}
	return int64(maxBodySize)
}
