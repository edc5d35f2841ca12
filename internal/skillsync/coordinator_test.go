package skillsync

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"benchtrack-backend/internal/cache"
	"benchtrack-backend/internal/database"
	m "benchtrack-backend/internal/model"
)

var testDB *database.DBinstanceStruct

func TestMain(tm *testing.M) {
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	tm.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator(testDB, cache.Disabled())
}

func TestReadSynced_CurrentVersion(t *testing.T) {
	coordinator := newTestCoordinator()

	snapshot, synced, err := coordinator.ReadSynced(context.Background(), database.TestUserConsultant1.ID, "profile")
	require.NoError(t, err)
	assert.True(t, synced)

	consultant, err := testDB.GetConsultant(database.TestUserConsultant1.ID)
	require.NoError(t, err)
	assert.Equal(t, consultant.SkillVersion, snapshot.Version)
	assert.Len(t, snapshot.Skills, len(consultant.Skills))
}

func TestReadSynced_IdempotentWithoutWrites(t *testing.T) {
	coordinator := newTestCoordinator()
	ctx := context.Background()

	first, _, err := coordinator.ReadSynced(ctx, database.TestUserConsultant1.ID, "report")
	require.NoError(t, err)
	second, _, err := coordinator.ReadSynced(ctx, database.TestUserConsultant1.ID, "report")
	require.NoError(t, err)

	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, len(first.Skills), len(second.Skills))
}

func TestReadSynced_UnknownConsultant(t *testing.T) {
	coordinator := newTestCoordinator()

	_, synced, err := coordinator.ReadSynced(context.Background(), uuid.New(), "profile")
	assert.ErrorIs(t, err, m.ErrNotFound)
	assert.False(t, synced)
}

func TestReadSynced_RecordsConsumerMarker(t *testing.T) {
	coordinator := newTestCoordinator()
	ctx := context.Background()

	snapshot, _, err := coordinator.ReadSynced(ctx, database.TestUserConsultant2.ID, "analytics")
	require.NoError(t, err)

	var state m.SyncState
	require.NoError(t, testDB.
		Where("consultant_id = ? AND consumer = ?", database.TestUserConsultant2.ID, "analytics").
		First(&state).Error)
	assert.Equal(t, snapshot.Version, state.ObservedVersion)

	// The marker follows the version on the next read after a write.
	_, err = coordinator.UpdateSkills(ctx, database.TestUserConsultant2.ID, []m.Skill{
		{Name: "Python", Source: m.SkillSourceManual},
	})
	require.NoError(t, err)

	snapshot, _, err = coordinator.ReadSynced(ctx, database.TestUserConsultant2.ID, "analytics")
	require.NoError(t, err)
	require.NoError(t, testDB.
		Where("consultant_id = ? AND consumer = ?", database.TestUserConsultant2.ID, "analytics").
		First(&state).Error)
	assert.Equal(t, snapshot.Version, state.ObservedVersion)
}

func TestComputeMatch_RecomputesAfterSkillUpdate(t *testing.T) {
	coordinator := newTestCoordinator()
	ctx := context.Background()

	opp := m.Opportunity{
		Status: m.OpportunityStatusOpen,
		EditableOpportunityInfo: m.EditableOpportunityInfo{
			Title:          "Streaming Platform",
			ClientName:     "Initech",
			RequiredSkills: []string{"Go", "Kafka"},
			FillTarget:     1,
		},
	}
	require.NoError(t, testDB.Create(&opp).Error)

	_, err := coordinator.UpdateSkills(ctx, database.TestUserConsultant1.ID, []m.Skill{
		{Name: "Go", Source: m.SkillSourceManual},
	})
	require.NoError(t, err)

	before, err := coordinator.ComputeMatch(ctx, database.TestUserConsultant1.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(50), before.Percentage)
	assert.Equal(t, []string{"Kafka"}, []string(before.Gaps))

	// Skill write bumps the version; the next computation must reflect it.
	newVersion, err := coordinator.UpdateSkills(ctx, database.TestUserConsultant1.ID, []m.Skill{
		{Name: "Go", Source: m.SkillSourceManual},
		{Name: "Kafka", Source: m.SkillSourceResume},
	})
	require.NoError(t, err)
	assert.Greater(t, newVersion, before.SkillVersion)

	after, err := coordinator.ComputeMatch(ctx, database.TestUserConsultant1.ID, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, newVersion, after.SkillVersion)
	assert.Equal(t, uint(100), after.Percentage)
	assert.Empty(t, []string(after.Gaps))
}

func TestComputeMatch_UnknownOpportunity(t *testing.T) {
	coordinator := newTestCoordinator()

	_, err := coordinator.ComputeMatch(context.Background(), database.TestUserConsultant1.ID, 999999)
	assert.ErrorIs(t, err, m.ErrNotFound)
}

// startTestRedis runs a Redis container and points the cache env vars at it.
func startTestRedis(t *testing.T) *cache.Redis {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisContainer.Terminate(context.Background()) })

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, nat.Port("6379/tcp"))
	require.NoError(t, err)

	t.Setenv("REDIS_HOST", redisHost)
	t.Setenv("REDIS_PORT", redisPort.Port())
	t.Setenv("REDIS_PASSWORD", "")

	liveCache := cache.NewRedis()
	require.NoError(t, liveCache.Ping(ctx))
	return liveCache
}

func TestReadSynced_StoreUnavailableServesLastSnapshot(t *testing.T) {
	ctx := context.Background()
	liveCache := startTestRedis(t)

	// A healthy read populates the snapshot cache.
	healthy := NewCoordinator(testDB, liveCache)
	cachedSnapshot, synced, err := healthy.ReadSynced(ctx, database.TestUserConsultant1.ID, "profile")
	require.NoError(t, err)
	require.True(t, synced)

	// Sever the store: a second connection to the same container, closed
	// underneath the ORM, makes every query fail.
	brokenDB, err := database.GetTestDBConn()
	require.NoError(t, err)
	sqlDB, err := brokenDB.Raw()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	degraded := NewCoordinator(brokenDB, liveCache)
	snapshot, synced, err := degraded.ReadSynced(ctx, database.TestUserConsultant1.ID, "profile")
	require.NoError(t, err)
	assert.False(t, synced)
	assert.Equal(t, cachedSnapshot.Version, snapshot.Version)
	assert.Len(t, snapshot.Skills, len(cachedSnapshot.Skills))

	// Never-synced consultant: still no error, just an empty stale snapshot.
	neverSynced := uuid.New()
	snapshot, synced, err = degraded.ReadSynced(ctx, neverSynced, "profile")
	require.NoError(t, err)
	assert.False(t, synced)
	assert.Equal(t, neverSynced, snapshot.ConsultantID)
	assert.Empty(t, snapshot.Skills)
}
