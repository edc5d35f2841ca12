package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "benchtrack-backend/internal/model"
	"benchtrack-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & profiles
var (
	TestAdminUser       m.User
	TestUserConsultant1 m.User
	TestUserConsultant2 m.User
	TestConsultant1     m.Consultant
	TestConsultant2     m.Consultant

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	// Exported seeded opportunities
	TestOpportunity1 m.Opportunity
	TestOpportunity2 m.Opportunity
	TestOpportunity3 m.Opportunity
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	// Seed sample consultants, an admin and opportunities
	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// GetTestDBConn opens an extra connection to the shared test container.
// Useful for tests that need to break a connection without taking the
// seeded instance down with it.
func GetTestDBConn() (*DBinstanceStruct, error) {
	if testDBInstance == nil {
		return nil, fmt.Errorf("test database is not running, call GetTestDB first")
	}
	return NewDBInstance(testDBInstance.Config)
}

// seedTestData inserts sample consultant and admin records if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount > 0 {
		return loadTestData(db)
	}

	emails := []*string{ptr("alice@example.com"), ptr("bob@example.com"), ptr("admin@example.com")}
	userSpecs := []struct {
		username string
		email    *string
		role     string
	}{
		{"consultant_alice", emails[0], m.RoleConsultant},
		{"consultant_bob", emails[1], m.RoleConsultant},
		{"admin_user", emails[2], m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    s.email,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	// Map created users to exported variables
	for _, u := range users {
		switch u.Username {
		case "consultant_alice":
			TestUserConsultant1 = u
		case "consultant_bob":
			TestUserConsultant2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	consultants := []m.Consultant{
		{
			UserID: TestUserConsultant1.ID,
			EditableConsultantInfo: m.EditableConsultantInfo{
				Name:            "Alice Nguyen",
				Department:      "Platform Engineering",
				PrimarySkill:    "Go",
				ExperienceYears: 5,
			},
			Skills: []m.Skill{
				{Name: "Go", Category: m.SkillCategoryTechnical, Proficiency: m.ProficiencyAdvanced, Years: 5, Source: m.SkillSourceManual, Confidence: 95},
				{Name: "PostgreSQL", Category: m.SkillCategoryTechnical, Proficiency: m.ProficiencyIntermediate, Years: 4, Source: m.SkillSourceManual, Confidence: 90},
				{Name: "Teamwork", Category: m.SkillCategorySoft, Proficiency: m.ProficiencyAdvanced, Years: 5, Source: m.SkillSourceManual, Confidence: 80},
			},
		},
		{
			UserID: TestUserConsultant2.ID,
			EditableConsultantInfo: m.EditableConsultantInfo{
				Name:            "Bob Somsak",
				Department:      "Data",
				PrimarySkill:    "Python",
				ExperienceYears: 3,
			},
			Skills: []m.Skill{
				{Name: "Python", Category: m.SkillCategoryTechnical, Proficiency: m.ProficiencyAdvanced, Years: 3, Source: m.SkillSourceResume, Confidence: 85},
				{Name: "SQL", Category: m.SkillCategoryTechnical, Proficiency: m.ProficiencyIntermediate, Years: 2, Source: m.SkillSourceResume, Confidence: 75},
			},
		},
	}
	if err := db.Create(&consultants).Error; err != nil {
		return err
	}

	TestConsultant1 = consultants[0]
	TestConsultant2 = consultants[1]

	// Seed opportunities (only if none exist yet)
	var opportunityCount int64
	if err := db.Model(&m.Opportunity{}).Count(&opportunityCount).Error; err != nil {
		return err
	}
	if opportunityCount == 0 {
		start1 := time.Now().AddDate(0, 1, 0)
		start2 := time.Now().AddDate(0, 2, 0)

		opportunities := []m.Opportunity{
			{
				Status: m.OpportunityStatusOpen,
				EditableOpportunityInfo: m.EditableOpportunityInfo{
					Title:           "Backend Engineer",
					ClientName:      "TechNova",
					Desc:            "Build Go microservices and database layers.",
					RequiredSkills:  []string{"Go", "PostgreSQL", "Docker"},
					ExperienceLevel: "Senior",
					Location:        "Bangkok (Hybrid)",
					StartDate:       &start1,
					FillTarget:      1,
				},
			},
			{
				Status: m.OpportunityStatusOpen,
				EditableOpportunityInfo: m.EditableOpportunityInfo{
					Title:           "Data Analyst",
					ClientName:      "DataForge",
					Desc:            "Support data cleansing and dashboards.",
					RequiredSkills:  []string{"Python", "SQL"},
					ExperienceLevel: "Mid",
					Location:        "Remote",
					StartDate:       &start2,
					FillTarget:      1,
				},
			},
			{
				Status: m.OpportunityStatusOpen,
				EditableOpportunityInfo: m.EditableOpportunityInfo{
					Title:           "Cloud Migration Squad",
					ClientName:      "TechNova",
					Desc:            "Lift-and-shift workloads to AWS.",
					RequiredSkills:  []string{"AWS", "Terraform", "Go"},
					ExperienceLevel: "Senior",
					Location:        "Chiang Mai (On-site)",
					FillTarget:      2,
				},
			},
		}

		if err := db.Create(&opportunities).Error; err != nil {
			return err
		}
		if len(opportunities) > 0 {
			TestOpportunity1 = opportunities[0]
		}
		if len(opportunities) > 1 {
			TestOpportunity2 = opportunities[1]
		}
		if len(opportunities) > 2 {
			TestOpportunity3 = opportunities[2]
		}
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"consultant_alice", "consultant_bob", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "consultant_alice":
			TestUserConsultant1 = u
		case "consultant_bob":
			TestUserConsultant2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	// Load consultant profiles
	_ = db.Preload("Skills").First(&TestConsultant1, "user_id = ?", TestUserConsultant1.ID).Error
	_ = db.Preload("Skills").First(&TestConsultant2, "user_id = ?", TestUserConsultant2.ID).Error

	// Load first three opportunities deterministically
	var opportunities []m.Opportunity
	if err := db.Order("id ASC").Limit(3).Find(&opportunities).Error; err == nil {
		if len(opportunities) > 0 {
			TestOpportunity1 = opportunities[0]
		}
		if len(opportunities) > 1 {
			TestOpportunity2 = opportunities[1]
		}
		if len(opportunities) > 2 {
			TestOpportunity3 = opportunities[2]
		}
	}

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
