package consultant

import (
	"benchtrack-backend/internal/auth"
	"benchtrack-backend/internal/cache"
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/middleware"
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/skillsync"
	"benchtrack-backend/internal/testutil"
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newTestController() *ConsultantController {
	return NewConsultantController(testDB, skillsync.NewCoordinator(testDB, cache.Disabled()))
}

func newEngine(cc *ConsultantController) *gin.Engine {
	r := gin.Default()
	r.GET("/consultants", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin), cc.GetConsultants)
	r.POST("/consultants", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleAdmin), cc.CreateConsultant)
	r.GET("/consultants/:id", middleware.RequireAuth(testDB), cc.GetConsultantByID)
	r.PATCH("/consultants/:id", middleware.RequireAuth(testDB), cc.EditConsultantProfile)
	r.PUT("/consultants/:id/availability", middleware.RequireAuth(testDB), cc.SetAvailability)
	r.PUT("/consultants/:id/skills", middleware.RequireAuth(testDB), cc.ReplaceSkills)
	r.POST("/consultants/:id/resume-skills", middleware.RequireAuth(testDB), cc.IngestResumeSkills)
	r.GET("/consultants/:id/skills/synced", middleware.RequireAuth(testDB), cc.GetSyncedSkills)
	return r
}

func TestGetConsultants_AdminOnly(t *testing.T) {
	r := newEngine(newTestController())

	consultantToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	rec, _ := testutil.MakeJSONRequest(nil, consultantToken, r, "/consultants", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	rec, _ = testutil.MakeJSONRequest(nil, adminToken, r, "/consultants", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGetConsultants_SkillFilter(t *testing.T) {
	r := newEngine(newTestController())
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(nil, adminToken, r, "/consultants?skill=postgres", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), database.TestConsultant1.Name)
	assert.NotContains(t, rec.Body.String(), database.TestConsultant2.Name)
}

func TestCreateConsultant(t *testing.T) {
	r := newEngine(newTestController())
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	body := gin.H{
		"username":   "consultant_carol",
		"password":   "LongEnough123",
		"name":       "Carol Lim",
		"department": "Cloud",
	}
	rec, resp := testutil.MakeJSONRequest(body, adminToken, r, "/consultants", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Carol Lim", resp["name"])

	// same username again
	rec, resp = testutil.MakeJSONRequest(body, adminToken, r, "/consultants", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "already exist")
}

func TestGetConsultantByID_OwnershipEnforced(t *testing.T) {
	r := newEngine(newTestController())

	aliceToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	rec, resp := testutil.MakeJSONRequest(nil, aliceToken, r, "/consultants/"+database.TestUserConsultant1.ID.String(), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, database.TestConsultant1.Name, resp["name"])

	// Alice cannot read Bob's profile
	rec, _ = testutil.MakeJSONRequest(nil, aliceToken, r, "/consultants/"+database.TestUserConsultant2.ID.String(), http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// but admin can
	adminToken, err := auth.GetAccessToken(t, testDB, database.TestAdminUser.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	rec, resp = testutil.MakeJSONRequest(nil, adminToken, r, "/consultants/"+database.TestUserConsultant2.ID.String(), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, database.TestConsultant2.Name, resp["name"])
}

func TestEditConsultantProfile_KeepsUnsetFields(t *testing.T) {
	r := newEngine(newTestController())
	aliceToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	body := gin.H{"department": "Platform Reliability"}
	rec, resp := testutil.MakeJSONRequest(body, aliceToken, r, "/consultants/"+database.TestUserConsultant1.ID.String(), http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Platform Reliability", resp["department"])
	assert.Equal(t, database.TestConsultant1.Name, resp["name"])
}

func TestSetAvailability_RejectsUnknownStatus(t *testing.T) {
	r := newEngine(newTestController())
	aliceToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	body := gin.H{"availability_status": "on-vacation"}
	rec, resp := testutil.MakeJSONRequest(body, aliceToken, r, "/consultants/"+database.TestUserConsultant1.ID.String()+"/availability", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "Unknown availability status")
}

func TestReplaceSkills_AdvancesVersionAndSyncs(t *testing.T) {
	r := newEngine(newTestController())
	bobToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	base := "/consultants/" + database.TestUserConsultant2.ID.String()

	var before model.Consultant
	assert.NoError(t, testDB.Where("user_id = ?", database.TestUserConsultant2.ID).First(&before).Error)

	body := gin.H{"skills": []gin.H{
		{"name": "Python", "proficiency": "expert", "years": 4},
		{"name": "Kubernetes", "years": 1},
	}}
	rec, resp := testutil.MakeJSONRequest(body, bobToken, r, base+"/skills", http.MethodPut)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(before.SkillVersion+1), resp["skill_version"])

	// a consumer read right after sees the new version and is synced
	rec, resp = testutil.MakeJSONRequest(nil, bobToken, r, base+"/skills/synced?consumer=staffing-dashboard", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["synced"])
	assert.Equal(t, float64(before.SkillVersion+1), resp["skill_version"])

	var marker model.SyncState
	assert.NoError(t, testDB.
		Where("consultant_id = ? AND consumer = ?", database.TestUserConsultant2.ID, "staffing-dashboard").
		First(&marker).Error)
	assert.Equal(t, before.SkillVersion+1, marker.ObservedVersion)
}

func TestGetSyncedSkills_RequiresConsumer(t *testing.T) {
	r := newEngine(newTestController())
	aliceToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	rec, resp := testutil.MakeJSONRequest(nil, aliceToken, r, "/consultants/"+database.TestUserConsultant1.ID.String()+"/skills/synced", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "Consumer")
}

func TestIngestResumeSkills(t *testing.T) {
	r := newEngine(newTestController())
	bobToken, err := auth.GetAccessToken(t, testDB, database.TestUserConsultant2.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	base := "/consultants/" + database.TestUserConsultant2.ID.String()

	body := gin.H{"skills": []gin.H{
		{"name": "Python", "proficiency": "expert", "years": 4, "confidence": 80},
		{"name": "Airflow", "years": 2, "confidence": 60},
	}}
	rec, _ := testutil.MakeJSONRequest(body, bobToken, r, base+"/resume-skills", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var consultant model.Consultant
	assert.NoError(t, testDB.Preload("Skills").Where("user_id = ?", database.TestUserConsultant2.ID).First(&consultant).Error)
	assert.True(t, consultant.ResumeUploaded)
	assert.Len(t, consultant.Skills, 2)
	for _, s := range consultant.Skills {
		assert.Equal(t, model.SkillSourceResume, s.Source)
	}
}
