package handlers

import (
	"context"
	"net/http"

	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpEmail    string
	lastSignUpPassword string
	lastGenEmail       string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(email, password string) (int, error) {
	m.lastSignUpEmail = email
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(email, password string) (string, error) {
	m.lastGenEmail = email
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(accessToken string) (int, error) {
	m.lastParseToken = accessToken
	return m.parseID, m.parseErr
}

type mockVacuums struct {
	createResp models.Vacuum
	createErr  error
	getResp    models.Vacuum
	getErr     error
	listResp   []models.Vacuum
	listErr    error
	renameResp models.Vacuum
	renameErr  error
	deactErr   error
	searchResp []models.Vacuum
	searchErr  error

	lastSearchFilter service.SearchFilter
}

func (m *mockVacuums) Create(ctx context.Context, userID int, name string) (models.Vacuum, error) {
	return m.createResp, m.createErr
}
func (m *mockVacuums) Get(ctx context.Context, id int64) (models.Vacuum, error) {
	return m.getResp, m.getErr
}
func (m *mockVacuums) ListOwned(ctx context.Context, userID int) ([]models.Vacuum, error) {
	return m.listResp, m.listErr
}
func (m *mockVacuums) Rename(ctx context.Context, userID int, id int64, name string) (models.Vacuum, error) {
	return m.renameResp, m.renameErr
}
func (m *mockVacuums) Deactivate(ctx context.Context, userID int, id int64) error {
	return m.deactErr
}
func (m *mockVacuums) Search(ctx context.Context, userID int, f service.SearchFilter) ([]models.Vacuum, error) {
	m.lastSearchFilter = f
	return m.searchResp, m.searchErr
}

type mockTransitions struct {
	err error

	lastVacuumID int64
	lastAction   models.Action
	lastUserID   int
	calls        int
}

func (m *mockTransitions) RequestTransition(ctx context.Context, vacuumID int64, action models.Action, userID int) error {
	m.calls++
	m.lastVacuumID = vacuumID
	m.lastAction = action
	m.lastUserID = userID
	return m.err
}

type mockScheduler struct {
	err error

	lastVacuumID int64
	lastAction   models.Action
	lastWhen     string
	lastUserID   int
}

func (m *mockScheduler) ScheduleTransition(vacuumID int64, action models.Action, whenText string, userID int) error {
	m.lastVacuumID = vacuumID
	m.lastAction = action
	m.lastWhen = whenText
	m.lastUserID = userID
	return m.err
}

type mockAudit struct {
	listResp []models.AuditRecord
	listErr  error

	recorded []string
}

func (m *mockAudit) Record(ctx context.Context, vacuumID int64, action models.Action, reason string) {
	m.recorded = append(m.recorded, reason)
}
func (m *mockAudit) ListForUser(ctx context.Context, userID int) ([]models.AuditRecord, error) {
	return m.listResp, m.listErr
}

// newMockService assembles a service.Service from the given mocks; nil
// fields stay nil and will panic if an unexpected endpoint is exercised.
func newMockService(auth *mockAuth, vacuums *mockVacuums, transitions *mockTransitions, scheduler *mockScheduler, audit *mockAudit) *service.Service {
	s := &service.Service{}
	if auth != nil {
		s.Authorization = auth
	}
	if vacuums != nil {
		s.Vacuums = vacuums
	}
	if transitions != nil {
		s.Transitions = transitions
	}
	if scheduler != nil {
		s.Scheduler = scheduler
	}
	if audit != nil {
		s.Audit = audit
	}
	return s
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
