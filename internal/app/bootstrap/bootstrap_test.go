package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-call-agent/internal/appointments"
	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/dialogue"
	"github.com/wolfman30/salon-call-agent/internal/notify"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		BusinessDataPath: "../../../data/salon_data.json",
		FAQPath:          "../../../data/faqs.yaml",
		RequiredSlots:    []string{"name", "date", "time", "contact"},
		ContactMode:      "combined",
		ReplySeed:        7,
		EmailProvider:    "stub",
	}
}

func TestBuildRedisClient(t *testing.T) {
	logger := logging.Discard()
	assert.Nil(t, BuildRedisClient(context.Background(), nil, logger, true))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true))
}

func TestConnectPostgresEmptyURL(t *testing.T) {
	assert.Nil(t, ConnectPostgres(context.Background(), "  ", logging.Discard()))
	_, inMemory := BuildRepository(nil, logging.Discard()).(*appointments.InMemoryRepository)
	assert.True(t, inMemory)
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.Discard()

	sender, err := BuildEmailSender(&appconfig.Config{EmailProvider: "stub"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.StubEmailSender{}, sender)

	sender, err = BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.test"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &notify.SendGridSender{}, sender)

	_, err = BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid"}, nil, logger)
	assert.ErrorContains(t, err, "SENDGRID_API_KEY")

	_, err = BuildEmailSender(&appconfig.Config{EmailProvider: "ses"}, nil, logger)
	assert.ErrorContains(t, err, "ses client")

	_, err = BuildEmailSender(&appconfig.Config{EmailProvider: "pigeon"}, nil, logger)
	assert.ErrorContains(t, err, "unknown email provider")

	_, err = BuildEmailSender(nil, nil, logger)
	assert.Error(t, err)
}

func TestBuildEngineFromSampleData(t *testing.T) {
	cfg := testConfig()
	catalog, err := LoadCatalog(cfg)
	require.NoError(t, err)

	engine, err := BuildEngine(cfg, catalog, logging.Discard())
	require.NoError(t, err)

	res, err := engine.Respond("Was kostet ein Herrenschnitt?", dialogue.EmptyState())
	require.NoError(t, err)
	assert.Equal(t, dialogue.DecisionFAQ, res.Decision)
	assert.Contains(t, res.Reply, "€")

	dc := DialogueConfig(cfg, catalog)
	assert.NotEmpty(t, dc.Services)
}

func TestBuildEngineRejectsBadSlots(t *testing.T) {
	cfg := testConfig()
	cfg.RequiredSlots = []string{"name", "shoe_size"}
	_, err := BuildEngine(cfg, nil, logging.Discard())
	assert.ErrorContains(t, err, "unknown required slot")

	cfg = testConfig()
	cfg.ContactMode = "split"
	_, err = BuildEngine(cfg, nil, logging.Discard())
	assert.ErrorContains(t, err, "contact slot requires combined")
}

func TestLoadCatalogMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.BusinessDataPath = "nope.json"
	_, err := LoadCatalog(cfg)
	assert.ErrorContains(t, err, "bootstrap:")
}
