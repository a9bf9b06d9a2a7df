package steps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"catfeeder-server/test/functional/driver"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

const (
	_eventuallyTimeout = 3 * time.Second
)

// The in-process server believes it is midday of this date.
var today = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

type FeatureContext struct {
	server       *driver.Server
	apiDriver    *driver.APIDriver
	socket       *driver.DashboardSocket
	response     *http.Response
	responseData map[string]any
	require      *require.Assertions
	t            godog.TestingT
}

func NewFeatureContext() *FeatureContext {
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	// Generic steps
	ctx.Step(`^wait for (.*)$`, fc.waitForDuration)
	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)
	ctx.When(`^I call the healthz endpoint$`, fc.iCallTheHealthzEndpoint)

	// Dashboard steps
	ctx.Given(`^the following readings on "([^"]*)":$`, fc.theFollowingReadingsOn)
	ctx.When(`^I get the dashboard for "([^"]*)"$`, fc.iGetTheDashboardFor)
	ctx.When(`^I open the dashboard page$`, fc.iOpenTheDashboardPage)
	ctx.Then(`^the feed count should be (\d+)$`, fc.theFeedCountShouldBe)
	ctx.Then(`^hour (\d+) should have (\d+) feeds$`, fc.hourShouldHaveFeeds)
	ctx.Then(`^the last update should be "([^"]*)"$`, fc.theLastUpdateShouldBe)
	ctx.Then(`^the status label should be "([^"]*)"$`, fc.theStatusLabelShouldBe)
	ctx.Then(`^the dashboard should be empty$`, fc.theDashboardShouldBeEmpty)
	ctx.Then(`^the dashboard should be connected$`, fc.theDashboardShouldBeConnected)

	// Live dashboard steps
	ctx.Given(`^I open the dashboard socket for "([^"]*)"$`, fc.iOpenTheDashboardSocketFor)
	ctx.Step(`^I eventually receive the dashboard for "([^"]*)" with (\d+) feeds$`, fc.iEventuallyReceiveTheDashboardForWithFeeds)
	ctx.Then(`^I eventually receive the dashboard with status "([^"]*)"$`, fc.iEventuallyReceiveTheDashboardWithStatus)
	ctx.Then(`^I eventually receive an error message$`, fc.iEventuallyReceiveAnErrorMessage)
	ctx.When(`^a reading at "([^"]*)" of ([\d.]+) cm with status "([^"]*)" arrives on "([^"]*)"$`, fc.aReadingArrivesOn)
	ctx.When(`^I select the date "([^"]*)" on the socket$`, fc.iSelectTheDateOnTheSocket)
	ctx.When(`^I send a "([^"]*)" message on the socket$`, fc.iSendAMessageOnTheSocket)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.t = godog.T(ctx)
		fc.require = require.New(fc.t)

		fc.reset()
		server, err := driver.StartServer(time.UTC, today)
		if err != nil {
			return ctx, err
		}
		fc.server = server
		fc.apiDriver = driver.NewAPIDriver(server)
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if fc.socket != nil {
			fc.socket.Close()
		}
		if fc.server != nil {
			fc.server.Stop()
		}
		return ctx, err
	})
}

func (fc *FeatureContext) reset() {
	fc.server = nil
	fc.apiDriver = nil
	fc.socket = nil
	fc.response = nil
	fc.responseData = nil
}

func (fc *FeatureContext) decodeBody(body io.ReadCloser, target any) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(target)
}
