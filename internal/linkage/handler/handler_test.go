package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/handler/mocks"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/planner"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/resolver"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/service"
	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/middleware/admin"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/testutil"
)

const adminToken = "s3cret"

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
	checks  map[string]HealthCheck
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.checks = map[string]HealthCheck{"postgres": func(context.Context) error { return nil }}
	s.buildRouter()
}

func (s *HandlerSuite) buildRouter() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(New(s.service, logger, 0), RouterConfig{
		AdminToken: adminToken,
		Gatherer:   prometheus.NewRegistry(),
		Checks:     s.checks,
		Logger:     logger,
	})
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path string, authed bool) *httptest.ResponseRecorder {
	if authed {
		return testutil.DoRequest(s.router, method, path, testutil.WithHeader(admin.HeaderAdminToken, adminToken))
	}
	return testutil.DoRequest(s.router, method, path)
}

func decode[T any](s *HandlerSuite, rec *httptest.ResponseRecorder) T {
	return testutil.UnmarshalResponse[T](s.T(), rec)
}

func (s *HandlerSuite) TestRun() {
	s.Run("requires admin token", func() {
		rec := s.do(http.MethodPost, "/v1/runs", false)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})

	s.Run("returns report", func() {
		s.service.EXPECT().Run(gomock.Any()).Return(&service.RunReport{
			RunID:   "run-1",
			Digest:  "abc",
			Applied: models.ApplyResult{Updated: 2},
		}, nil)

		rec := s.do(http.MethodPost, "/v1/runs", true)
		s.Equal(http.StatusOK, rec.Code)
		body := decode[map[string]any](s, rec)
		s.Equal("run-1", body["run_id"])
		s.Equal(float64(2), body["applied"].(map[string]any)["updated"])
	})

	s.Run("apply failure is unavailable", func() {
		s.service.EXPECT().Run(gomock.Any()).Return(nil, &service.ApplyError{Err: errors.New("db down")})

		rec := s.do(http.MethodPost, "/v1/runs", true)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})

	s.Run("concurrent run conflicts", func() {
		s.service.EXPECT().Run(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeConflict, "a linkage run is already in progress"))

		rec := s.do(http.MethodPost, "/v1/runs", true)
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *HandlerSuite) TestPreview() {
	res := resolver.Resolve([]models.MappingFact{{A: "A::KF", B: "B::COG"}, {A: "", B: "C::KF"}})
	plan := planner.Build(res, []models.ParticipantKey{"A::KF", "B::COG", "C::KF"})
	s.service.EXPECT().Preview(gomock.Any()).Return(&service.Preview{Resolution: res, Plan: plan, Digest: plan.Digest()}, nil)

	rec := s.do(http.MethodGet, "/v1/runs/preview", true)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := decode[PreviewResponse](s, rec)
	s.Equal(plan.Digest(), body.Digest)
	s.Equal(3, body.Instructions)
	s.Equal(2, body.Aliased)
	s.Len(body.InvalidFacts, 1)
}

func (s *HandlerSuite) TestAliases() {
	s.Run("found", func() {
		alias := "P1::KF, P2::COG"
		s.service.EXPECT().Aliases(gomock.Any(), "P1::KF").Return(&service.AliasLookup{
			Key:     "P1::KF",
			Alias:   &alias,
			Members: models.ParseAlias(alias),
		}, nil)

		rec := s.do(http.MethodGet, "/v1/participants/P1::KF/aliases", false)
		s.Equal(http.StatusOK, rec.Code)
		body := decode[map[string]any](s, rec)
		s.Equal(alias, body["alternative_participants"])
		s.Len(body["members"], 2)
	})

	s.Run("path encoded key", func() {
		s.service.EXPECT().Aliases(gomock.Any(), "a/b::KF").Return(&service.AliasLookup{Key: "a/b::KF", Members: []models.ParticipantKey{}}, nil)

		rec := s.do(http.MethodGet, "/v1/participants/a%2Fb::KF/aliases", false)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("not found", func() {
		s.service.EXPECT().Aliases(gomock.Any(), "P9::KF").Return(nil, dErrors.New(dErrors.CodeNotFound, "participant not found"))

		rec := s.do(http.MethodGet, "/v1/participants/P9::KF/aliases", false)
		testutil.AssertStatusAndError(s.T(), rec, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("malformed key", func() {
		s.service.EXPECT().Aliases(gomock.Any(), "P9").Return(nil, dErrors.New(dErrors.CodeInvalidInput, "participant key must look like <id>::<domain>"))

		rec := s.do(http.MethodGet, "/v1/participants/P9/aliases", false)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestHealthz() {
	s.Run("healthy", func() {
		rec := s.do(http.MethodGet, "/healthz", false)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("ok", decode[healthResponse](s, rec).Status)
	})

	s.Run("degraded", func() {
		s.checks["redis"] = func(context.Context) error { return errors.New("connection refused") }
		s.buildRouter()

		rec := s.do(http.MethodGet, "/healthz", false)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		body := decode[healthResponse](s, rec)
		s.Equal("degraded", body.Status)
		s.Equal("connection refused", body.Checks["redis"])
	})
}

func (s *HandlerSuite) TestMetrics() {
	rec := s.do(http.MethodGet, "/metrics", false)
	s.Equal(http.StatusOK, rec.Code)
}
