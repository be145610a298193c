package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
	audits []*models.AuditLog
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", &pq.Error{Code: "23505"})
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (f *fakeUsers) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeUsers) FindRefreshToken(ctx context.Context, digest string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[digest]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeUsers) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id && !t.Revoked {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, log)
	return nil
}

func (f *fakeUsers) auditActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.audits))
	for _, a := range f.audits {
		out = append(out, a.Action)
	}
	return out
}

type fakePermissions struct {
	perms map[string]*models.Permission
	lists int
}

func newFakePermissions() *fakePermissions {
	return &fakePermissions{perms: map[string]*models.Permission{}}
}

func (f *fakePermissions) List(ctx context.Context) ([]models.Permission, error) {
	f.lists++
	out := make([]models.Permission, 0, len(f.perms))
	for _, p := range f.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakePermissions) FindByCode(ctx context.Context, code string) (*models.Permission, error) {
	p, ok := f.perms[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePermissions) IsActive(ctx context.Context, code string) (bool, error) {
	p, ok := f.perms[code]
	return ok && p.Active, nil
}

func (f *fakePermissions) Upsert(ctx context.Context, perm *models.Permission) error {
	if existing, ok := f.perms[perm.Code]; ok {
		existing.Description = perm.Description
		*perm = *existing
		return nil
	}
	perm.ID = uuid.NewString()
	perm.Active = true
	cp := *perm
	f.perms[perm.Code] = &cp
	return nil
}

func (f *fakePermissions) SetActive(ctx context.Context, code string, active bool) error {
	p, ok := f.perms[code]
	if !ok {
		return sql.ErrNoRows
	}
	p.Active = active
	return nil
}

type fakeRoles struct {
	roles  map[string]*models.Role
	grants map[string][]string
	perms  *fakePermissions
	lists  int
}

func newFakeRoles(perms *fakePermissions) *fakeRoles {
	return &fakeRoles{roles: map[string]*models.Role{}, grants: map[string][]string{}, perms: perms}
}

func (f *fakeRoles) load(r *models.Role) *models.Role {
	cp := *r
	cp.Permissions = nil
	for _, id := range f.grants[r.ID] {
		for _, p := range f.perms.perms {
			if p.ID == id {
				cp.Permissions = append(cp.Permissions, *p)
			}
		}
	}
	return &cp
}

func (f *fakeRoles) List(ctx context.Context) ([]models.Role, error) {
	f.lists++
	out := make([]models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *f.load(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f.load(r), nil
}

func (f *fakeRoles) FindByName(ctx context.Context, name string) (*models.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return f.load(r), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRoles) GetOrCreate(ctx context.Context, name string) (*models.Role, error) {
	if r, err := f.FindByName(ctx, name); err == nil {
		return r, nil
	}
	r := &models.Role{ID: uuid.NewString(), Name: name}
	f.roles[r.ID] = r
	return f.load(r), nil
}

func (f *fakeRoles) AddPermission(ctx context.Context, roleID, permissionID string) error {
	for _, id := range f.grants[roleID] {
		if id == permissionID {
			return nil
		}
	}
	f.grants[roleID] = append(f.grants[roleID], permissionID)
	return nil
}

type fakeProfiles struct {
	students  map[string]*models.StudentProfile
	companies map[string]*models.CompanyProfile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{students: map[string]*models.StudentProfile{}, companies: map[string]*models.CompanyProfile{}}
}

func (f *fakeProfiles) FindStudentByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	p, ok := f.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) FindCompanyByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error) {
	p, ok := f.companies[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) FindCompanyByID(ctx context.Context, id string) (*models.CompanyProfile, error) {
	for _, p := range f.companies {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProfiles) CreateStudent(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	f.students[profile.UserID] = &cp
	return nil
}

func (f *fakeProfiles) CreateCompany(ctx context.Context, profile *models.CompanyProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	f.companies[profile.UserID] = &cp
	return nil
}

func (f *fakeProfiles) UpdateStudent(ctx context.Context, profile *models.StudentProfile) error {
	cp := *profile
	f.students[profile.UserID] = &cp
	return nil
}

func (f *fakeProfiles) ApproveCompany(ctx context.Context, id string, approvedAt time.Time) error {
	for _, p := range f.companies {
		if p.ID == id {
			p.IsApproved = true
			p.ApprovedAt = &approvedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeInternships struct {
	items map[string]*models.Internship
	order []string
	// echo returns every matching row twice from ListByParticipant.
	echo bool
}

func newFakeInternships() *fakeInternships {
	return &fakeInternships{items: map[string]*models.Internship{}}
}

func (f *fakeInternships) Create(ctx context.Context, in *models.Internship) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Status == "" {
		in.Status = models.InternshipPending
	}
	cp := *in
	f.items[in.ID] = &cp
	f.order = append(f.order, in.ID)
	return nil
}

func (f *fakeInternships) FindByID(ctx context.Context, id string) (*models.Internship, error) {
	in, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *in
	return &cp, nil
}

func (f *fakeInternships) ListByParticipant(ctx context.Context, userID string) ([]models.Internship, error) {
	var out []models.Internship
	for _, id := range f.order {
		in := f.items[id]
		if in.StudentID == userID || in.CompanyID == userID {
			out = append(out, *in)
			if f.echo {
				out = append(out, *in)
			}
		}
	}
	return out, nil
}

type fakeDiaries struct {
	entries []models.DiaryEntry
}

func (f *fakeDiaries) Create(ctx context.Context, entry *models.DiaryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDiaries) ListByInternship(ctx context.Context, internshipID string) ([]models.DiaryEntry, error) {
	var out []models.DiaryEntry
	for _, e := range f.entries {
		if e.InternshipID == internshipID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEvaluations struct {
	items map[string]*models.Evaluation
}

func newFakeEvaluations() *fakeEvaluations {
	return &fakeEvaluations{items: map[string]*models.Evaluation{}}
}

func (f *fakeEvaluations) Create(ctx context.Context, eval *models.Evaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	eval.ComputeAverage()
	cp := *eval
	f.items[eval.ID] = &cp
	return nil
}

func (f *fakeEvaluations) Update(ctx context.Context, eval *models.Evaluation) error {
	if _, ok := f.items[eval.ID]; !ok {
		return sql.ErrNoRows
	}
	eval.ComputeAverage()
	cp := *eval
	f.items[eval.ID] = &cp
	return nil
}

func (f *fakeEvaluations) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvaluations) SetApproved(ctx context.Context, id string, approved bool) error {
	e, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.IsApproved = approved
	return nil
}

func (f *fakeEvaluations) ListByInternship(ctx context.Context, internshipID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, e := range f.items {
		if e.InternshipID == internshipID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type recordedEvent struct {
	Type    string
	Key     string
	ActorID string
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType, key, actorID string, data interface{}) {
	p.events = append(p.events, recordedEvent{Type: eventType, Key: key, ActorID: actorID})
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// world wires every service over shared in-memory fakes with the default roles seeded.
type world struct {
	users       *fakeUsers
	perms       *fakePermissions
	roles       *fakeRoles
	profiles    *fakeProfiles
	internships *fakeInternships
	diaries     *fakeDiaries
	evaluations *fakeEvaluations
	events      *recordingPublisher

	roleSvc       *RoleService
	access        *AccessService
	userSvc       *UserService
	profileSvc    *ProfileService
	internshipSvc *InternshipService
	evaluationSvc *EvaluationService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		users:       newFakeUsers(),
		perms:       newFakePermissions(),
		profiles:    newFakeProfiles(),
		internships: newFakeInternships(),
		diaries:     &fakeDiaries{},
		evaluations: newFakeEvaluations(),
		events:      &recordingPublisher{},
	}
	w.roles = newFakeRoles(w.perms)
	logger := zap.NewNop()

	w.roleSvc = NewRoleService(w.roles, w.perms, nil, w.users, logger)
	require.NoError(t, w.roleSvc.Seed(context.Background()))
	w.access = NewAccessService(w.users, w.roleSvc, logger)
	w.userSvc = NewUserService(w.users, w.roles, w.roleSvc, w.access, nil, logger)
	w.profileSvc = NewProfileService(w.profiles, w.access, w.users, w.events, nil, logger)
	w.internshipSvc = NewInternshipService(w.internships, w.diaries, w.evaluations, w.users, w.access, w.users, w.events, nil, logger)
	w.evaluationSvc = NewEvaluationService(w.evaluations, w.internships, w.access, w.users, w.events, nil, logger)
	return w
}

// addUser stores an active user holding roleName and returns its caller.
func (w *world) addUser(t *testing.T, roleName, email string) *models.Caller {
	t.Helper()
	role, err := w.roles.FindByName(context.Background(), roleName)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), RoleID: role.ID, IsActive: true, Status: true}
	require.NoError(t, w.users.Create(context.Background(), user))
	return &models.Caller{UserID: user.ID, RoleID: role.ID, Email: email}
}

func (w *world) addStudent(t *testing.T, email, first, last string) *models.Caller {
	t.Helper()
	caller := w.addUser(t, models.RoleStudent, email)
	require.NoError(t, w.profiles.CreateStudent(context.Background(), &models.StudentProfile{UserID: caller.UserID, FirstName: first, LastName: last, Phone: "555-0100", Address: "Old Street 1"}))
	return caller
}

func (w *world) addCompany(t *testing.T, email, name string) (*models.Caller, *models.CompanyProfile) {
	t.Helper()
	caller := w.addUser(t, models.RoleCompany, email)
	profile := &models.CompanyProfile{UserID: caller.UserID, Name: name}
	require.NoError(t, w.profiles.CreateCompany(context.Background(), profile))
	return caller, profile
}

func requireCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, want.Code, appErr.Code, "error: %v", err)
}
